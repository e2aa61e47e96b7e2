package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHTML(t *testing.T) {
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "TOKEN", "-100123", time.Second)
	id, err := c.SendHTML(context.Background(), "<b>hi</b>")
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	assert.Equal(t, "-100123", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Equal(t, "<b>hi</b>", got.Text)
}

func TestSendHTML_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "TOKEN", "1", time.Second).SendHTML(context.Background(), "x")
	assert.ErrorContains(t, err, "chat not found")

	_, err = NewClient(srv.URL, "", "1", time.Second).SendHTML(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendHTML_TransportErrorHidesToken(t *testing.T) {
	const token = "123456:SECRET-BOT-TOKEN"
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := NewClient(addr, token, "-100123", time.Second).SendHTML(context.Background(), "x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
	assert.Contains(t, err.Error(), "telegram sendMessage: Post")
}

func TestFormatOrder(t *testing.T) {
	msg := FormatOrder(Order{
		ID:            "ORD-1",
		CustomerName:  "Budi <script>",
		CustomerEmail: "budi@example.com",
		Items: []Item{
			{Name: "Logo Design", Price: 75000, Quantity: 2},
		},
		Total:       150000,
		ProjectName: "Brand kit",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	assert.Contains(t, msg, "<b>Order ID:</b> ORD-1")
	assert.Contains(t, msg, "Budi &lt;script&gt;")
	assert.Contains(t, msg, "<b>Phone:</b> -")
	assert.Contains(t, msg, "• Logo Design x2 - Rp 150.000")
	assert.Contains(t, msg, "<b>Total:</b> Rp 150.000")
	assert.Contains(t, msg, "<b>Deskripsi:</b> -")
	assert.Contains(t, msg, "2/1/2026, 10.04.05")
}
