package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	flashCookie     = "storefront_flash"
	flashContextKey = "flash_pending"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// addFlash queues a message for the next view the browser loads.
func addFlash(c echo.Context, category, message string) {
	pending := pendingFlashes(c)
	pending = append(pending, Flash{Category: category, Message: message})
	c.Set(flashContextKey, pending)

	data, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pendingFlashes merges what came in with the request and what this request queued.
func pendingFlashes(c echo.Context) []Flash {
	if v, ok := c.Get(flashContextKey).([]Flash); ok {
		return v
	}
	out := readFlashCookie(c)
	c.Set(flashContextKey, out)
	return out
}

func readFlashCookie(c echo.Context) []Flash {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	data, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

// takeFlashes returns the queued messages and expires the cookie. Each message is shown once.
func takeFlashes(c echo.Context) []Flash {
	out := pendingFlashes(c)
	c.Set(flashContextKey, []Flash{})
	if len(out) > 0 {
		c.SetCookie(&http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	if out == nil {
		out = []Flash{}
	}
	return out
}
