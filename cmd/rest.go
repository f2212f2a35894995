package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreconfig "github.com/AzielCF/az-settings/core/config"
	"github.com/AzielCF/az-settings/pkg/utils"
	"github.com/AzielCF/az-settings/ui/rest"
	"github.com/AzielCF/az-settings/ui/rest/middleware"
	"github.com/AzielCF/az-settings/ui/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the settings API over http",
	Long:  `Serve the settings store over a REST API with a websocket change feed at /api/ws.`,
	Run:   restServer,
}

func init() {
	restCmd.Flags().StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	restCmd.Flags().String("basic-auth", "", "Basic auth for API (format: user:pass,user2:pass2)")
	_ = viper.BindPFlag("app.port", restCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("app.basic_auth", restCmd.Flags().Lookup("basic-auth"))
	rootCmd.AddCommand(restCmd)
}

// newRestApp builds the fiber app. Split from restServer so it can be tested.
func newRestApp(rt *appRuntime, hub *websocket.Hub) *fiber.App {
	cfg := rt.cfg

	app := fiber.New(fiber.Config{
		Network:               "tcp",
		AppName:               "Az-Settings",
		DisableStartupMessage: true,
		ServerHeader:          "Hidden",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	apiGroup := app.Group(cfg.App.BasePath + "/api")

	if len(cfg.App.BasicAuth) > 0 {
		users, err := coreconfig.BasicAuthUsers(cfg.App.BasicAuth)
		if err != nil {
			logrus.Fatalf("[REST] %v", err)
		}
		apiGroup.Use(basicauth.New(basicauth.Config{
			Users: users,
			Next: func(c *fiber.Ctx) bool {
				// Allow CORS preflight without credentials.
				return c.Method() == fiber.MethodOptions
			},
		}))
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH is empty, the API is public")
	}

	rest.InitRestSettings(apiGroup, rt.store, rt.activity)
	rest.InitRestHealth(apiGroup, rt.store, rt.repo, cfg.Storage.Backend, utils.GetServerID(cfg.App.ServerID))
	hub.RegisterRoutes(apiGroup)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(utils.ResponseData{
			Status:  fiber.StatusNotFound,
			Code:    "NOT_FOUND",
			Message: "API Endpoint not found: " + c.Path(),
		})
	})

	return app
}

func restServer(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := bootstrap(ctx)
	if err != nil {
		logrus.Fatalf("[APP] %v", err)
	}

	hub := websocket.NewHub(rt.store)
	go hub.Run(ctx)

	app := newRestApp(rt, hub)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		cancel()
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	logrus.Infof("[REST] Listening on :%s%s/api", rt.cfg.App.Port, rt.cfg.App.BasePath)
	if err := app.Listen(":" + rt.cfg.App.Port); err != nil {
		logrus.Errorf("[REST] Failed to start: %v", err)
	}
	rt.Stop()
}
