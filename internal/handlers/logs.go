package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"timecircuits/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var queryTimeLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// @Summary      List panel events
// @Description  Filter events by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range"    example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(TRAVEL,RETURN,KEYPAD,RTC_GLITCH,NTP_SYNC,ROLLOVER,RESTART,POWER,ALARM,REMINDER,COUNTDOWN)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	f, err := logFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrInvalidTimeRange), errors.Is(err, service.ErrUnknownEventType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load events", "events_list_failed", err,
			"from", f.From, "to", f.To, "type", f.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// logFilterFromQuery reads from, to and type. A 'to' without a time part
// is moved to the last nanosecond of that day.
func logFilterFromQuery(c *gin.Context) (service.LogFilter, error) {
	f := service.LogFilter{Type: c.Query("type")}
	var err error
	if s := c.Query("from"); s != "" {
		if f.From, err = parseQueryTime(s); err != nil {
			return f, fmt.Errorf("invalid 'from': %w", err)
		}
	}
	if s := c.Query("to"); s != "" {
		if f.To, err = parseQueryTime(s); err != nil {
			return f, fmt.Errorf("invalid 'to': %w", err)
		}
		if !strings.ContainsAny(s, "T ") {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return f, nil
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}
