package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/noah-isme/evaluer-api/internal/handler"
	"github.com/noah-isme/evaluer-api/internal/middleware"
	"github.com/noah-isme/evaluer-api/internal/models"
	"github.com/noah-isme/evaluer-api/pkg/config"
	"github.com/noah-isme/evaluer-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/evaluer-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/evaluer-api/pkg/middleware/requestid"
)

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(a.cfg.Tracing.ServiceName))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	checks := map[string]handler.Pinger{"database": a.db}
	if a.redis != nil {
		checks["redis"] = handler.PingFunc(a.cacheRepo.Ping)
	}
	ops := handler.NewMetricsHandler(a.metrics, checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	gradeHandler := handler.NewGradeHandler(a.grades)
	transcriptHandler := handler.NewTranscriptHandler(a.transcripts)
	recalcHandler := handler.NewRecalculationHandler(a.recalc)
	weightHandler := handler.NewWeightHandler(a.weights, a.calc, a.validate)

	graders := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin)
	admins := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	// Students may only read their own grades.
	readers := middleware.RBAC(string(models.RoleTeacher), string(models.RoleAdmin), string(models.RoleSuperAdmin), middleware.Self("student_id"))

	api := r.Group(a.cfg.APIPrefix, middleware.JWT(a.tokens))
	grades := api.Group("/grades")
	grades.PUT("/assignment", graders, middleware.Audit(a.logger, "response.grade"), gradeHandler.UpdateResponseGrade)
	grades.GET("/assignments/:assignmentId", readers, gradeHandler.AssignmentGrade)
	grades.GET("/assignments/:assignmentId/responses/:responseId", readers, gradeHandler.ResponseGrade)
	grades.PUT("/assignments/:assignmentId/override", admins, middleware.Audit(a.logger, "assignment.override"), gradeHandler.OverrideAssignmentGrade)
	grades.GET("/modules", readers, gradeHandler.ModuleGrade)
	grades.GET("/subjects", readers, gradeHandler.SubjectGrade)
	grades.GET("/overall", readers, gradeHandler.OverallGrade)
	grades.GET("/weights", weightHandler.Get)
	grades.POST("/recalculate", admins, middleware.Audit(a.logger, "module.recalculate"), gradeHandler.Recalculate)
	grades.POST("/recalculate/async", admins, middleware.Audit(a.logger, "module.recalculate.async"), recalcHandler.Enqueue)
	grades.GET("/students/:studentId/transcript",
		middleware.RBAC(string(models.RoleTeacher), string(models.RoleAdmin), string(models.RoleSuperAdmin), middleware.Self("studentId")),
		transcriptHandler.Get,
	)

	return r
}
