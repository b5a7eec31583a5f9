package serve

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultAddress  = "127.0.0.1:9090"
	shutdownTimeout = 5 * time.Second
)

func NewCmdServe() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve DIR",
		Short: "Serve a generated site over HTTP to preview it.",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("address", cmd.Flags().Lookup("address"))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := Serve(cmd.Context(), args[0], viper.GetString("address")); err != nil {
				log.Error(errors.Wrapf(err, "could not serve %s", args[0]))
				os.Exit(1)
			}
		},
	}
	cmd.Flags().String("address", defaultAddress,
		"HTTP server address. Example: --address 0.0.0.0:9090")
	return cmd
}

// NewRouter serves the files of dir, index.html for the root path.
func NewRouter(dir string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Static("/", dir)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}

// Serve blocks until ctx is done, then shuts the server down.
func Serve(ctx context.Context, dir, address string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}

	srv := &http.Server{
		Addr:              address,
		Handler:           NewRouter(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Infof("The site is available in http://%s, press Ctrl+C to stop.", address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}
