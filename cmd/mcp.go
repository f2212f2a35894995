package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AzielCF/az-settings/ui/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the settings MCP server using SSE",
	Long:  `Start an MCP (Model Context Protocol) server over Server-Sent Events so agents can read and change settings.`,
	Run:   mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("port", "", "Port for the SSE MCP server")
	mcpCmd.Flags().String("host", "", "Host for the SSE MCP server")
	_ = viper.BindPFlag("mcp.port", mcpCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("mcp.host", mcpCmd.Flags().Lookup("host"))
}

func mcpServer(_ *cobra.Command, _ []string) {
	rt, err := bootstrap(context.Background())
	if err != nil {
		logrus.Fatalf("[APP] %v", err)
	}

	info := rt.store.GetApplicationInfo()
	mcpServer := server.NewMCPServer(
		"Grand Opus Settings MCP Server",
		info.Version,
		server.WithToolCapabilities(true),
	)

	settingsHandler := mcp.InitMcpSettings(rt.store)
	settingsHandler.AddSettingsTools(mcpServer)

	host, port := rt.cfg.MCP.Host, rt.cfg.MCP.Port
	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", host, port)),
		server.WithKeepAlive(true),
	)

	addr := fmt.Sprintf("%s:%s", host, port)
	logrus.Infof("[MCP] Starting SSE server on %s", addr)
	logrus.Infof("[MCP] SSE endpoint: http://%s/sse", addr)
	logrus.Infof("[MCP] Message endpoint: http://%s/message", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		if err := sseServer.Shutdown(context.Background()); err != nil {
			logrus.Errorf("[MCP] Error during shutdown: %v", err)
		}
	}()

	if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Errorf("[MCP] SSE server stopped: %v", err)
	}
	rt.Stop()
}
