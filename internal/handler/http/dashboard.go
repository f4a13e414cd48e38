package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hrms-lite/hrms-backend-go/internal/domain/dashboard"
	"github.com/hrms-lite/hrms-backend-go/internal/handler/http/response"
	"github.com/hrms-lite/hrms-backend-go/internal/pkg/sse"
)

const streamKeepalive = 30 * time.Second

type DashboardHandler interface {
	// GetDashboard returns the current snapshot
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// Stream pushes a fresh snapshot after every attendance write
	Stream(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
	hub              *sse.Hub
}

func NewDashboardHandler(dashboardService dashboard.DashboardService, hub *sse.Hub) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService, hub: hub}
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stream handles GET /dashboard/stream
func (h *dashboardHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(sse.TopicAttendance)
	slog.Info("Dashboard stream opened",
		"subscribers", h.hub.SubscriberCount(sse.TopicAttendance),
		"total", h.hub.TotalSubscribers())
	defer func() {
		cleanup()
		slog.Info("Dashboard stream closed",
			"subscribers", h.hub.SubscriberCount(sse.TopicAttendance),
			"total", h.hub.TotalSubscribers())
	}()

	// Initial snapshot
	if !h.sendSnapshot(w, r) {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
			if !h.sendSnapshot(w, r) {
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func (h *dashboardHandlerImpl) sendSnapshot(w http.ResponseWriter, r *http.Request) bool {
	snapshot, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		slog.Error("Failed to compute dashboard snapshot for stream", "error", err)
		return r.Context().Err() == nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to encode dashboard snapshot", "error", err)
		return true
	}

	fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", data)
	return true
}
