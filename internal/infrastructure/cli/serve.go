package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/doeshing/jarvis-go/internal/app"
	"github.com/doeshing/jarvis-go/internal/infrastructure/server"
)

func newServeCommand(container *app.Container) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			defer archive(cmd, container)

			if addr == "" {
				addr = container.Config.GetServerAddr()
			}
			gin.SetMode(gin.ReleaseMode)

			logWriter := container.Logger.Writer()
			defer logWriter.Close()

			srv := server.New(server.Deps{
				Pipeline:   container.Pipeline,
				Classifier: container.Classifier,
				Extractor:  container.Extractor,
				Catalog:    container.Catalog,
				Logger:     container.Logger,
				LogWriter:  logWriter,
			})
			cmd.Printf("Listening on http://%s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config server.addr)")
	return cmd
}
