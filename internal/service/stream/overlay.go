package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	"CryptoView/internal/services/overlay"
	xhttp "CryptoView/pkg/http"
	applogger "CryptoView/pkg/logger"
)

const (
	ControlScale    = "scale"
	ControlOverlays = "overlays"
	ControlCandles  = "candles"
	ControlReload   = "reload"
)

// Control is a client message on the overlay socket.
type Control struct {
	Type    string               `json:"type"`
	Scale   *overlay.LinearScale `json:"scale,omitempty"`
	Visible *bool                `json:"visible,omitempty"`
}

// AnalysisLoader returns the analysis to overlay, or nil when none is available.
type AnalysisLoader func(ctx context.Context) *models.AnalysisResult

type lineMsg struct {
	ID   int                `json:"id"`
	Line *overlay.PriceLine `json:"line,omitempty"`
}

// lineSurface turns drawn price lines into add and remove messages.
type lineSurface struct {
	send func(Message)
	mu   sync.Mutex
	next int
}

func (s *lineSurface) CreatePriceLine(l overlay.PriceLine) any {
	s.mu.Lock()
	s.next++
	id := s.next
	s.mu.Unlock()
	s.send(Message{Type: MsgLineAdd, Data: lineMsg{ID: id, Line: &l}})
	return id
}

func (s *lineSurface) RemovePriceLine(h any) {
	id, _ := h.(int)
	s.send(Message{Type: MsgLineRemove, Data: lineMsg{ID: id}})
}

// OverlaySession follows one chart: it re-projects the analysis zones every
// frame against the latest scale the client reported and keeps the trade
// level lines in step with the analysis and the visibility toggle.
type OverlaySession struct {
	ctx    context.Context
	load   AnalysisLoader
	send   func(Message)
	loop   *overlay.FrameLoop
	levels *overlay.LevelController

	mu      sync.Mutex
	scale   overlay.LinearScale
	result  *models.AnalysisResult
	visible bool
}

func NewOverlaySession(ctx context.Context, clk clock.Clock, interval time.Duration, load AnalysisLoader, send func(Message)) *OverlaySession {
	s := &OverlaySession{
		ctx:     ctx,
		load:    load,
		send:    send,
		levels:  overlay.NewLevelController(&lineSurface{send: send}),
		visible: true,
	}
	s.loop = overlay.NewFrameLoop(clk, interval, s.project, func(f overlay.Frame) {
		send(Message{Type: MsgFrame, Data: f})
	})
	return s
}

// Start loads the analysis, draws its levels and begins streaming frames.
func (s *OverlaySession) Start() {
	s.reload()
	s.sync()
}

func (s *OverlaySession) project() overlay.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overlay.Project(s.result, s.scale)
}

func (s *OverlaySession) reload() {
	r := s.load(s.ctx)
	s.mu.Lock()
	s.result = r
	s.mu.Unlock()
}

// sync redraws the levels and starts or stops the frame loop.
func (s *OverlaySession) sync() {
	s.mu.Lock()
	r, visible := s.result, s.visible
	s.mu.Unlock()

	s.levels.Sync(r, visible)
	if visible && r != nil {
		s.loop.Show(s.ctx)
	} else {
		s.loop.Hide()
	}
}

// Handle applies one control message.
func (s *OverlaySession) Handle(ctl Control) {
	switch ctl.Type {
	case ControlScale:
		if ctl.Scale == nil {
			s.send(Message{Type: MsgError, Data: "scale is required"})
			return
		}
		if errs := xhttp.ValidateStruct(s.ctx, ctl.Scale); errs != nil {
			s.send(Message{Type: MsgError, Data: errs})
			return
		}
		s.mu.Lock()
		s.scale = *ctl.Scale
		s.mu.Unlock()
	case ControlOverlays:
		if ctl.Visible == nil {
			s.send(Message{Type: MsgError, Data: "visible is required"})
			return
		}
		s.mu.Lock()
		s.visible = *ctl.Visible
		s.mu.Unlock()
		s.sync()
	case ControlCandles:
		s.sync()
	case ControlReload:
		s.reload()
		s.sync()
	default:
		s.send(Message{Type: MsgError, Data: "unknown control " + ctl.Type})
	}
}

// Close stops the frame loop and removes every drawn line.
func (s *OverlaySession) Close() {
	s.loop.Hide()
	s.levels.Clear()
}

// Streaming reports whether frames are being produced.
func (s *OverlaySession) Streaming() bool { return s.loop.Running() }

// Lines is the number of level lines currently drawn.
func (s *OverlaySession) Lines() int { return s.levels.Drawn() }

// ServeOverlay upgrades the request and runs an overlay session over it.
func (h *Hub) ServeOverlay(c echo.Context, load AnalysisLoader) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	cl := h.newClient(conn)
	if err := h.registerOverlay(cl); err != nil {
		return nil
	}
	defer h.unregisterOverlay(cl)
	go h.writeLoop(cl)

	sess := NewOverlaySession(ctx, clock.Real(), overlay.DefaultFrameInterval, load, cl.deliver)
	defer sess.Close()
	sess.Start()

	h.readLoop(cl, func(data []byte) {
		var ctl Control
		if err := json.Unmarshal(data, &ctl); err != nil {
			cl.push(Message{Type: MsgError, Data: "malformed control message"})
			return
		}
		sess.Handle(ctl)
	})
	h.logger.Debug("overlay stream closed", applogger.String("path", c.Path()))
	return nil
}
