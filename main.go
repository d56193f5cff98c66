package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"sms-backend/auth"
	"sms-backend/config"
	"sms-backend/controllers"
	"sms-backend/database"
	"sms-backend/messaging"
	"sms-backend/registry"
	"sms-backend/repositories"
	"sms-backend/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// RequestLogger logs every request after it has been processed.
func RequestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		startTime := time.Now()

		chain.ProcessFilter(req, resp)

		logger.Info("Request",
			zap.String("remote_addr", req.Request.RemoteAddr),
			zap.String("method", req.Request.Method),
			zap.String("path", req.Request.URL.Path),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("user_agent", req.Request.UserAgent()),
		)
	}
}

func main() {
	// Initialize configs
	config.InitConfig()

	var logger *zap.Logger
	switch config.AppConfig.LogLevel {
	case "debug":
		logger, _ = zap.NewDevelopment()
	case "info":
		logger, _ = zap.NewProduction()
	default:
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits
	sugar := logger.Sugar()

	auth.SetSigningKey([]byte(config.AppConfig.JwtSecret))

	db := database.InitDB()

	publisher, err := messaging.NewMQTTPublisher(config.AppConfig.MQTT, sugar)
	if err != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	notifier := messaging.NewNotifier(publisher)

	userRepo := repositories.NewUserRepository(db)
	actionAttachmentRepo := repositories.NewActionAttachmentRepository(db)
	actionAttachmentService := services.NewActionAttachmentService(actionAttachmentRepo, notifier)

	container := restful.NewContainer()
	container.Filter(RequestLogger(logger))

	loginWS := new(restful.WebService)
	loginWS.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	auth.NewLoginResource(userRepo).RegisterRoutes(loginWS)
	container.Add(loginWS)

	actionAttachmentWS := new(restful.WebService)
	controllers.NewActionAttachmentController(actionAttachmentService).RegisterRoutes(actionAttachmentWS)
	container.Add(actionAttachmentWS)

	healthWS := new(restful.WebService)
	healthWS.Route(healthWS.GET("/healthz").To(func(req *restful.Request, resp *restful.Response) {
		_ = resp.WriteHeaderAndJson(http.StatusOK, map[string]string{"status": "ok"}, restful.MIME_JSON)
	}))
	container.Add(healthWS)

	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}))

	if config.AppConfig.Consul.Enabled {
		reg, err := registry.NewConsulRegistry(sugar)
		if err != nil {
			logger.Fatal("Failed to create Consul registry", zap.Error(err))
		}
		hostname, _ := os.Hostname()
		serviceID := fmt.Sprintf("%s-%s-%d", config.AppConfig.ServiceName, hostname, config.AppConfig.HTTPPort)
		check := registry.CreateHTTPCheck(serviceID, hostname, config.AppConfig.HTTPPort, "/healthz", "10s", "1s")
		if err := reg.Register(serviceID, config.AppConfig.ServiceName, hostname, config.AppConfig.HTTPPort, []string{"http"}, check); err != nil {
			logger.Fatal("Failed to register service with Consul", zap.Error(err))
		}
		defer func() {
			if err := reg.Deregister(serviceID); err != nil {
				logger.Warn("Failed to deregister service", zap.Error(err))
			}
		}()
	}

	// Use the port number in the configuration
	addr := fmt.Sprintf(":%d", config.AppConfig.HTTPPort)
	logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, container); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
