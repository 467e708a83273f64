package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orgdiag/internal/gateway/handler"
	"orgdiag/internal/gateway/handler/rpc"
	"orgdiag/internal/gateway/middleware"
)

func NewMux(
	wizardHandler *rpc.WizardHandler,
	interviewHandler *rpc.InterviewHandler,
	reportHandler *handler.ReportHandler,
	gatherer prometheus.Gatherer,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpc.NewWizardServiceHandler(wizardHandler))
	mux.HandleFunc("/ws/interview", interviewHandler.HandleInterviewWS)

	// Export & ops
	mux.HandleFunc("/report", reportHandler.HandleReport)
	mux.HandleFunc("/report/archive", reportHandler.HandleArchive)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Middleware
	return middleware.CORS(mux)
}
