// Package api serves the devices of a board over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/golang/glog"

	"hermes/host/board"
	"hermes/host/device"
	"hermes/host/runner"
)

// SetTimeout bounds one PUT.
const SetTimeout = 2 * time.Second

// Controller is what the API needs from a board.
type Controller interface {
	States() []board.State
	State(ref string) (board.State, error)
	Set(ctx context.Context, ref string, value int) error
}

// NewRouter builds the routes:
//
//	GET /devices
//	GET /devices/{id}
//	PUT /devices/{id}   {"value": n}
//
// {id} is a device name or numeric id.
func NewRouter(ctl Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer) // make sure this is last

	h := &handler{ctl: ctl}
	r.Route("/devices", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.set)
	})
	return r
}

// Serve listens on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}
	glog.Infof("api listening on %s", addr)
	return runner.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}

type handler struct {
	ctl Controller
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	states := h.ctl.States()
	list := make([]render.Renderer, 0, len(states))
	for _, st := range states {
		list = append(list, newDeviceResponse(st))
	}
	if err := render.RenderList(w, r, list); err != nil {
		render.Render(w, r, ErrRender(err))
	}
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctl.State(chi.URLParam(r, "id"))
	if err != nil {
		render.Render(w, r, errResponse(err))
		return
	}
	render.Render(w, r, newDeviceResponse(st))
}

func (h *handler) set(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")
	data := &SetRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), SetTimeout)
	defer cancel()
	if err := h.ctl.Set(ctx, ref, *data.Value); err != nil {
		render.Render(w, r, errResponse(err))
		return
	}
	st, err := h.ctl.State(ref)
	if err != nil {
		render.Render(w, r, errResponse(err))
		return
	}
	render.Render(w, r, newDeviceResponse(st))
}

// SetRequest is the PUT body.
type SetRequest struct {
	Value *int `json:"value"`
}

func (s *SetRequest) Bind(r *http.Request) error {
	if s.Value == nil {
		return errors.New("missing value")
	}
	return nil
}

// DeviceResponse is one device and its last known value.
type DeviceResponse struct {
	ID       uint8      `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`
	Runnable bool       `json:"runnable"`
	Value    *int       `json:"value,omitempty"`
	Updated  *time.Time `json:"updated,omitempty"`
}

func newDeviceResponse(st board.State) *DeviceResponse {
	resp := &DeviceResponse{
		ID:       st.ID,
		Name:     st.Name,
		Kind:     st.Spec.Code().String(),
		Runnable: st.Spec.Runnable(),
	}
	if st.Known {
		v, at := st.Value, st.Updated
		resp.Value, resp.Updated = &v, &at
	}
	return resp
}

func (*DeviceResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// ErrResponse renders an error with its status code.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErr(status int, err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      err.Error(),
	}
}

func ErrInvalidRequest(err error) render.Renderer { return newErr(http.StatusBadRequest, err) }
func ErrRender(err error) render.Renderer         { return newErr(http.StatusUnprocessableEntity, err) }

func errResponse(err error) render.Renderer {
	switch {
	case errors.Is(err, board.ErrUnknownDevice):
		return newErr(http.StatusNotFound, err)
	case errors.Is(err, device.ErrValueRange):
		return newErr(http.StatusBadRequest, err)
	case errors.Is(err, device.ErrNotMutable):
		return newErr(http.StatusConflict, err)
	case errors.Is(err, board.ErrNotConnected):
		return newErr(http.StatusServiceUnavailable, err)
	}
	return newErr(http.StatusBadGateway, err)
}
