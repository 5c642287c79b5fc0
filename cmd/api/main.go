package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "assessment-backend/internal/adapter/http"
	"assessment-backend/internal/adapter/middleware"
	"assessment-backend/internal/adapter/store/gormstore"
	"assessment-backend/internal/adapter/store/xlsx"
	"assessment-backend/internal/config"
	"assessment-backend/internal/domain/assessment"
	"assessment-backend/internal/domain/employee"
	"assessment-backend/internal/domain/store"
	"assessment-backend/internal/infrastructure/cache"
	"assessment-backend/internal/infrastructure/db"
	assessuc "assessment-backend/internal/usecase/assessment"
	"assessment-backend/internal/usecase/auth"
	"assessment-backend/internal/usecase/directory"
	"assessment-backend/internal/usecase/evaluator"
)

const (
	rosterSheet     = "員工名單"
	assessmentSheet = "考核紀錄"
)

func openStores(cfg *config.Config) (roster, assessments store.TableStore, err error) {
	switch cfg.StoreBackend {
	case "db":
		gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		roster, err := gormstore.New(gdb, "roster", employee.RosterHeaders)
		if err != nil {
			return nil, nil, err
		}
		assessments, err := gormstore.New(gdb, "assessments", assessment.Headers)
		if err != nil {
			return nil, nil, err
		}
		return roster, assessments, nil
	default:
		wb, err := xlsx.OpenWorkbook(cfg.WorkbookPath, map[string][]string{
			rosterSheet:     employee.RosterHeaders,
			assessmentSheet: assessment.Headers,
		})
		if err != nil {
			return nil, nil, err
		}
		return wb.Sheet(rosterSheet), wb.Sheet(assessmentSheet), nil
	}
}

func main() {
	_ = godotenv.Load()
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	rosterStore, assessmentStore, err := openStores(cfg)
	if err != nil {
		log.WithError(err).Fatal("open record store")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("open redis")
	}

	dir := directory.NewUsecase(rosterStore, cfg.RosterTTL)

	var gen evaluator.Generator = evaluator.NewOpenAIGenerator(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, cfg.AITimeout)
	gen = evaluator.NewCachingGenerator(gen, rdb, cfg.EvalCacheTTL)
	eval := evaluator.NewService(gen, log)

	lifecycle := assessuc.NewUsecase(dir, assessmentStore, eval)
	gate := auth.NewUsecase(rdb, dir, lifecycle, cfg.AdminUser, cfg.AdminPass, cfg.OTPDigits, cfg.SessionTTL, log)

	h := httpadp.NewHandler()
	authH := httpadp.NewAuthHandler(gate)
	assessH := httpadp.NewAssessmentHandler(lifecycle, dir)
	adminH := httpadp.NewAdminHandler(lifecycle)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	// routes
	e.GET("/health", h.Health)
	e.POST("/auth/code", authH.RequestCode)
	e.POST("/auth/login", authH.Login)
	e.POST("/auth/admin", authH.AdminLogin)
	e.POST("/auth/logout", authH.Logout, middleware.RequireSession(gate))

	emp := e.Group("/assessments", middleware.RequireSession(gate, auth.RoleEmployee))
	emp.GET("/questionnaire", assessH.Questionnaire)
	emp.GET("/open", assessH.OpenSubmission)
	emp.POST("", assessH.Submit)

	admin := e.Group("/admin/assessments", middleware.RequireSession(gate, auth.RoleAdmin))
	admin.GET("/pending", adminH.ListPending)
	admin.POST("/finalize", adminH.Finalize)
	admin.GET("/export", adminH.ExportCSV)

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
