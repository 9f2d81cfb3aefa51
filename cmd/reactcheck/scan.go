package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reactcheck/reactcheck/internal/config"
	"github.com/reactcheck/reactcheck/internal/errs"
	"github.com/reactcheck/reactcheck/internal/metrics"
	"github.com/reactcheck/reactcheck/internal/model"
	"github.com/reactcheck/reactcheck/internal/orchestrator"
	"github.com/reactcheck/reactcheck/internal/reportstore"
	"github.com/reactcheck/reactcheck/internal/transport"
)

func scanCmd(v *viper.Viper) *cobra.Command {
	var addr string
	var outPath string
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "scan <target-url>",
		Short: "Accept one probe connection and analyze its render events",
		Long: `scan starts a local listener, accepts exactly one probe connection,
and runs the analysis pipeline until the probe disconnects or 'stop' is
requested. Launching a browser against <target-url> and injecting the
probe are handled by an external driver; this command only speaks the
wire protocol the probe produces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			code, err := runScan(args[0], addr, outPath, waitTimeout, cfg)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(code)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "listen", "127.0.0.1:7890", "address to accept the probe connection on")
	cmd.Flags().StringVar(&outPath, "out", "reactcheck-report.json", "path to write the session report")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 5*time.Minute, "maximum time to wait for a probe to connect")
	return cmd
}

// sessionResult is handed from the websocket handler goroutine back to
// the command's main goroutine once one session has run to completion.
type sessionResult struct {
	report model.SessionReport
	err    error
}

func runScan(targetURL, addr, outPath string, waitTimeout time.Duration, cfg model.Configuration) (int, error) {
	sessionID := newSessionID()
	done := make(chan sessionResult, 1)
	metricsCollector := metrics.New(metrics.Options{})

	r := chi.NewRouter()
	r.Get("/", previewHandler(sessionID, targetURL))
	r.Get("/ws", websocketHandler(sessionID, targetURL, cfg, metricsCollector, done))

	srv := &http.Server{Addr: addr, Handler: r}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	var result sessionResult
	select {
	case result = <-done:
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return 3, errs.Wrap(errs.LaunchFailed, "scan", err)
		}
		return 3, errs.New(errs.ConnectionFailed, "scan", "listener stopped before the probe connected")
	case <-time.After(waitTimeout):
		return 3, errs.New(errs.Timeout, "scan", "timed out waiting for the probe to connect")
	}

	if result.err != nil {
		return 3, result.err
	}

	store := reportstore.NewFileStore(outPath)
	if _, err := store.Write(result.report); err != nil {
		return 3, err
	}
	fmt.Printf("wrote report to %s (%d components, %d critical)\n",
		outPath, result.report.Summary.UniqueComponents, result.report.Summary.CriticalCount)

	if result.report.Summary.CriticalCount > 0 {
		return 1, nil
	}
	return 0, nil
}

func websocketHandler(sessionID, targetURL string, cfg model.Configuration, metricsCollector *metrics.Collector, done chan<- sessionResult) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := transport.Accept(w, req, transport.DefaultConfig())
		if err != nil {
			select {
			case done <- sessionResult{err: errs.Wrap(errs.ConnectionFailed, "scan.websocketHandler", err)}:
			default:
			}
			return
		}

		session := model.SessionDescriptor{
			TargetURL: targetURL,
			SessionID: sessionID,
			StartedAt: time.Now().UnixMilli(),
		}
		orch := orchestrator.New(session, cfg, conn, slog.Default())
		orch.SetMetrics(metricsCollector)
		if err := orch.Start(); err != nil {
			done <- sessionResult{err: err}
			return
		}

		readErr := conn.ReadLoop(orch.HandleInbound, orch.HandleMalformed, nil)
		if readErr != nil {
			orch.HandleConnectionLoss()
		}

		rep, err := orch.Stop()
		done <- sessionResult{report: rep, err: err}
	}
}

func previewHandler(sessionID, targetURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!doctype html>
<html><head><title>reactcheck</title></head>
<body>
<h1>reactcheck session %s</h1>
<p>target: %s</p>
<p>connect the probe to <code>ws://%s/ws</code> to begin.</p>
</body></html>`, sessionID, targetURL, req.Host)
	}
}

func newSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
