package handlers

import (
	"errors"
	"net/http"

	"timecircuits/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusQueued   = "queued"
	statusTravel   = "travel_requested"
	statusReturn   = "return_requested"
	statusPowerOn  = "power_on"
	statusPowerOff = "power_off"
	statusAlarm    = "alarm_queued"

	errGetState        = "failed to load state"
	errNotReady        = "panel is still booting"
	errQueueFull       = "panel is busy, retry shortly"
	errSubmit          = "failed to submit input"
	errInvalidBodyPref = "invalid body: "
)

// logAndJSONError logs err under logKey and answers with userMsg.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondWithStatusAndState answers 202 with status and, when available, the
// latest snapshot. Input is applied by the control loop on its next tick, so
// the snapshot may not reflect it yet.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusAccepted, resp)
}

// submitFailed maps panel errors to HTTP codes.
func (h *Handler) submitFailed(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSequence), errors.Is(err, service.ErrInvalidAlarm):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInputQueueFull):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errQueueFull, logKey, err)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errSubmit, logKey, err)
	}
}

// KeypadEventRequest is a single raw panel input.
type KeypadEventRequest struct {
	// key_pressed, key_released, key_held, enter_pressed,
	// travel_button_pressed, travel_button_held, power_on, power_off
	Kind string `json:"kind" binding:"required" example:"key_pressed"`
	// Digit for key_* kinds
	Key string `json:"key,omitempty" example:"7"`
}

// KeypadSequenceRequest types digits and optionally presses ENTER.
type KeypadSequenceRequest struct {
	Digits string `json:"digits" example:"102619850121"`
	Enter  bool   `json:"enter" example:"true"`
}

// TravelRequest starts a time travel. Long selects the full sequence.
type TravelRequest struct {
	Long bool `json:"long" example:"true"`
}

// PowerRequest switches the displays.
type PowerRequest struct {
	On *bool `json:"on" binding:"required" example:"true"`
}

// AlarmRequest sets the daily alarm. Weekday is daily (default), workdays,
// weekends or a day name (sun..sat).
type AlarmRequest struct {
	Hour    *int   `json:"hour" binding:"required" example:"7"`
	Minute  *int   `json:"minute" binding:"required" example:"30"`
	Weekday string `json:"weekday,omitempty" example:"workdays"`
	Enabled *bool  `json:"enabled,omitempty" example:"true"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get panel state
// @Tags         clock
// @Produce      json
// @Success      200  {object}  timecircuits.PanelSnapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/clock/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if errors.Is(err, service.ErrNotReady) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNotReady})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "panel_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Send a keypad event
// @Tags         keypad
// @Accept       json
// @Produce      json
// @Param        body  body      KeypadEventRequest  true  "Input event"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/keypad/event [post]
// @Security     BearerAuth
func (h *Handler) keypadEvent(c *gin.Context) {
	var req KeypadEventRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	kind, err := service.ParseInputKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Key) > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key must be a single digit"})
		return
	}
	ev := service.InputEvent{Kind: kind}
	if req.Key != "" {
		ev.Key = req.Key[0]
	}
	if err := h.services.Panel.Submit(c.Request.Context(), ev); err != nil {
		h.submitFailed(c, "keypad_event_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusQueued, gin.H{"kind": req.Kind})
}

// @Summary      Type a digit sequence
// @Description  Presses and releases each digit in order, then ENTER when enter is true.
// @Tags         keypad
// @Accept       json
// @Produce      json
// @Param        body  body      KeypadSequenceRequest  true  "Digits"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/keypad/sequence [post]
// @Security     BearerAuth
func (h *Handler) keypadSequence(c *gin.Context) {
	var req KeypadSequenceRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if req.Digits == "" && !req.Enter {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to type"})
		return
	}
	if err := h.services.Panel.EnterSequence(c.Request.Context(), req.Digits, req.Enter); err != nil {
		h.submitFailed(c, "keypad_sequence_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusQueued, gin.H{"digits": req.Digits})
}

// @Summary      Time travel
// @Description  Travels to the destination time. Without a body a short travel is made.
// @Tags         travel
// @Accept       json
// @Produce      json
// @Param        body  body      TravelRequest  false  "Travel options"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/travel [post]
// @Security     BearerAuth
func (h *Handler) travel(c *gin.Context) {
	var req TravelRequest
	if c.Request.ContentLength > 0 {
		if ok := h.bindJSONOrBadRequest(c, &req); !ok {
			return
		}
	}
	if err := h.services.Panel.Travel(c.Request.Context(), req.Long); err != nil {
		h.submitFailed(c, "travel_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusTravel, gin.H{"long": req.Long})
}

// @Summary      Return from time travel
// @Tags         travel
// @Produce      json
// @Success      202  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/travel/return [post]
// @Security     BearerAuth
func (h *Handler) returnToPresent(c *gin.Context) {
	if err := h.services.Panel.Return(c.Request.Context()); err != nil {
		h.submitFailed(c, "return_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusReturn, gin.H{})
}

// @Summary      Switch displays on or off
// @Tags         clock
// @Accept       json
// @Produce      json
// @Param        body  body      PowerRequest  true  "Power state"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/power [post]
// @Security     BearerAuth
func (h *Handler) setPower(c *gin.Context) {
	var req PowerRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.Panel.SetPower(c.Request.Context(), *req.On); err != nil {
		h.submitFailed(c, "power_failed", err)
		return
	}
	status := statusPowerOff
	if *req.On {
		status = statusPowerOn
	}
	h.respondWithStatusAndState(c, status, gin.H{})
}

// @Summary      Set the alarm
// @Description  Sets hour, minute and weekday mode. The alarm is enabled unless enabled is false.
// @Tags         clock
// @Accept       json
// @Produce      json
// @Param        body  body      AlarmRequest  true  "Alarm"
// @Success      202   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/alarm [put]
// @Security     BearerAuth
func (h *Handler) setAlarm(c *gin.Context) {
	var req AlarmRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	enabled := req.Enabled == nil || *req.Enabled
	if err := h.services.Panel.SetAlarm(c.Request.Context(), *req.Hour, *req.Minute, req.Weekday, enabled); err != nil {
		h.submitFailed(c, "alarm_set_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusAlarm, gin.H{"weekday": req.Weekday, "enabled": enabled})
}
