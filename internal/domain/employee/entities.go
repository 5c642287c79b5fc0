package employee

// Undetermined is the sentinel for roster fields whose value is missing or
// not yet decided (tenure, grade).
const Undetermined = "undetermined"

// RosterHeaders is the header row written when this service creates the
// roster table itself. Existing rosters may use the English aliases instead;
// columns are matched by name, not position.
var RosterHeaders = []string{"姓名", "到職日", "職稱", "年資", "職等", "可考核", "管理員", "自訂問題"}

type Employee struct {
	Name           string `json:"name"`
	StartDate      string `json:"start_date"`
	Title          string `json:"title"`
	Tenure         string `json:"tenure"`
	Grade          string `json:"grade"`
	IsAdmin        bool   `json:"is_admin"`
	CanAssess      bool   `json:"can_assess"`
	CustomQuestion string `json:"custom_question,omitempty"`
}
