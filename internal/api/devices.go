package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-hub/internal/audit"
	"github.com/nerrad567/gray-logic-hub/internal/device"
)

// DeviceResponse is the JSON view of one device.
type DeviceResponse struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Label          string `json:"label"`
	On             bool   `json:"on"`
	QuickView      string `json:"quick_view"`
	TimerRunning   bool   `json:"timer_running"`
	TimerRemaining int    `json:"timer_remaining,omitempty"`
}

// DeviceListResponse is the body of GET /api/v1/devices.
type DeviceListResponse struct {
	Devices []DeviceResponse `json:"devices"`
	Count   int              `json:"count"`
}

func toDeviceResponse(s device.Summary) DeviceResponse {
	return DeviceResponse{
		Name:           s.Name,
		Kind:           string(s.Kind),
		Label:          s.Label,
		On:             s.On,
		QuickView:      s.QuickView,
		TimerRunning:   s.TimerRunning,
		TimerRemaining: s.TimerRemaining,
	}
}

// handleListDevices returns devices in registry order.
//
// Query parameters:
//   - kind: tag, label or menu number accepted by device.ParseKind
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	var filter device.Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := device.ParseKind(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter = k
	}

	resp := DeviceListResponse{Devices: []DeviceResponse{}}
	for _, sum := range s.devices.Summaries() {
		if filter != "" && sum.Kind != filter {
			continue
		}
		resp.Devices = append(resp.Devices, toDeviceResponse(sum))
	}
	resp.Count = len(resp.Devices)
	writeJSON(w, http.StatusOK, resp)
}

// handleGetDevice returns one device by case-insensitive name.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	for _, sum := range s.devices.Summaries() {
		if strings.EqualFold(sum.Name, name) {
			writeJSON(w, http.StatusOK, toDeviceResponse(sum))
			return
		}
	}
	writeNotFound(w, "device not found: "+name)
}

// handleListJournal returns paginated journal entries.
//
// Query parameters:
//   - device: filter by device name
//   - action: filter by event type (added, power, timer_expired, ...)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Device: q.Get("device"),
		Action: q.Get("action"),
	}

	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, key+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing journal", "error", err)
		writeInternalError(w, "failed to list journal")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
