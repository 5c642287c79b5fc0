package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	domain "assessment-backend/internal/domain/assessment"
	"assessment-backend/internal/domain/employee"
	"assessment-backend/pkg/id"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

var (
	ErrNoCodeIssued    = errors.New("no verification code issued")
	ErrCodeMismatch    = errors.New("verification code mismatch")
	ErrBadCredentials  = errors.New("bad admin credentials")
	ErrSessionNotFound = errors.New("session not found")
)

// Session binds a verified identity to a role for the lifetime of a token.
// It is the only session state there is; no process-wide current user exists.
type Session struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// OpenFinder is the one lifecycle query the gate needs: whether an employee
// already has an open submission (no point issuing a code for one who cannot
// submit anyway).
type OpenFinder interface {
	FindOpenSubmission(ctx context.Context, employeeName string) (*domain.Submission, error)
}

// Usecase issues and verifies one-time codes and manages sessions, both in
// redis. Codes deliberately have no expiry and no attempt limit: the channel
// is an operator-mediated convenience, not a security boundary. Issuing a new
// code overwrites (and so invalidates) the previous one.
type Usecase struct {
	rdb        *redis.Client
	dir        employee.Directory
	subs       OpenFinder
	adminUser  string
	adminPass  string
	otpDigits  int
	sessionTTL time.Duration
	log        *logrus.Logger
}

func NewUsecase(rdb *redis.Client, dir employee.Directory, subs OpenFinder, adminUser, adminPass string, otpDigits int, sessionTTL time.Duration, log *logrus.Logger) *Usecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Usecase{
		rdb:        rdb,
		dir:        dir,
		subs:       subs,
		adminUser:  adminUser,
		adminPass:  adminPass,
		otpDigits:  otpDigits,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

func otpKey(name string) string { return "otp:" + name }

func sessionKey(token string) string { return "session:" + token }

// consumeCode deletes the code only when it matches, in one server-side step,
// so a correct code cannot authenticate twice even under concurrent verifies.
// Returns -1 when no code is stored, 0 on mismatch, 1 on match-and-consume.
var consumeCode = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if v == false then return -1 end
if v == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// RequestCode issues a fresh code for the employee. The code reaches the
// operator through the service log, never the requesting client.
func (u *Usecase) RequestCode(ctx context.Context, name string) (string, error) {
	emp, err := u.dir.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if !emp.CanAssess {
		return "", domain.ErrNotAuthorized
	}
	open, err := u.subs.FindOpenSubmission(ctx, name)
	if err != nil {
		return "", err
	}
	if open != nil {
		return "", fmt.Errorf("%w for %s", domain.ErrDuplicateSubmission, name)
	}

	code := id.NewNumericCode(u.otpDigits)
	if err := u.rdb.Set(ctx, otpKey(name), code, 0).Err(); err != nil {
		return "", fmt.Errorf("store verification code: %w", err)
	}
	u.log.WithFields(logrus.Fields{"employee": name, "code": code}).
		Info("auth: verification code issued, relay to the employee")
	return code, nil
}

// VerifyCode checks the submitted code against the last issued one. A correct
// code is consumed: it authenticates exactly once per issuance. A wrong code
// leaves the issued code in place.
func (u *Usecase) VerifyCode(ctx context.Context, name, submitted string) (*Session, error) {
	res, err := consumeCode.Run(ctx, u.rdb, []string{otpKey(name)}, submitted).Int()
	if err != nil {
		return nil, fmt.Errorf("verify code: %w", err)
	}
	switch res {
	case -1:
		return nil, ErrNoCodeIssued
	case 0:
		return nil, ErrCodeMismatch
	}
	return u.createSession(ctx, name, RoleEmployee)
}

// VerifyAdmin authenticates the admin against the configured credentials,
// with no code step.
func (u *Usecase) VerifyAdmin(ctx context.Context, username, password string) (*Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(u.adminPass)) == 1
	if !userOK || !passOK {
		return nil, ErrBadCredentials
	}
	return u.createSession(ctx, username, RoleAdmin)
}

func (u *Usecase) createSession(ctx context.Context, name string, role Role) (*Session, error) {
	s := &Session{Token: id.NewID32(), Name: name, Role: role}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if err := u.rdb.Set(ctx, sessionKey(s.Token), payload, u.sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return s, nil
}

// Get resolves a bearer token to its session.
func (u *Usecase) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := u.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (u *Usecase) Logout(ctx context.Context, token string) error {
	return u.rdb.Del(ctx, sessionKey(token)).Err()
}
