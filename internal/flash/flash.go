// Package flash carries one-shot messages across a redirect in a cookie.
package flash

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	cookieName = "flash"
	ctxKey     = "flash.pending"
)

type Message struct {
	Level string // success, info, warning, danger
	Text  string
}

// Set queues a message; several can pile up before the next render.
func Set(c *gin.Context, level, text string) {
	msgs := append(pending(c), Message{Level: level, Text: text})
	c.Set(ctxKey, msgs)
	c.SetCookie(cookieName, encode(msgs), 60, "/", "", false, true)
}

// Take returns the queued messages, oldest first, and clears them.
func Take(c *gin.Context) []Message {
	msgs := pending(c)
	if len(msgs) == 0 {
		return nil
	}
	c.Set(ctxKey, []Message(nil))
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
	return msgs
}

// Data attaches the queued messages to a template context.
func Data(c *gin.Context, data gin.H) gin.H {
	if msgs := Take(c); len(msgs) > 0 {
		data["flash"] = msgs
	}
	return data
}

// pending prefers messages queued during this request over the inbound cookie.
func pending(c *gin.Context) []Message {
	if v, ok := c.Get(ctxKey); ok {
		msgs, _ := v.([]Message)
		return msgs
	}
	raw, err := c.Cookie(cookieName)
	if err != nil {
		return nil
	}
	return decode(raw)
}

func encode(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Level+"|"+m.Text)
	}
	return url.QueryEscape(strings.Join(parts, "\n"))
}

func decode(raw string) []Message {
	value, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	var msgs []Message
	for _, part := range strings.Split(value, "\n") {
		level, text, found := strings.Cut(part, "|")
		if !found {
			continue
		}
		msgs = append(msgs, Message{Level: level, Text: text})
	}
	return msgs
}
