// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

func newTestAdapter(t *testing.T, handler http.Handler) (*noteStoreAdapter, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a := NewNoteStoreAdapter(HTTPClientConfig{
		BaseURL:    srv.URL,
		Token:      "test-token",
		MaxRetries: 2,
	}, logger.Nop()).(*noteStoreAdapter)
	a.baseDelay = time.Millisecond

	return a, srv
}

func TestCreateItem(t *testing.T) {
	var gotAuth string
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/items", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var item models.RemoteItem
		require.NoError(t, json.NewDecoder(r.Body).Decode(&item))
		item.ID = "itm-1"

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(item)
	}))

	created, err := a.CreateItem(context.Background(), models.RemoteItem{
		Title: "nenya-settings 1/1",
		Body:  `{"v":1}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "itm-1", created.ID)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestListItems_QueryParams(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nenya-settings", r.URL.Query().Get("title_prefix"))
		assert.Equal(t, "nenya", r.URL.Query().Get("tag"))
		w.Write([]byte(`[{"id":"a","title":"nenya-settings 1/2"},{"id":"b","title":"nenya-settings 2/2"}]`))
	}))

	items, err := a.ListItems(context.Background(), ItemQuery{TitlePrefix: "nenya-settings", Tag: "nenya"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "nenya-settings 1/2", items[0].Title)
}

func TestBatchSet(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/items/batch", r.URL.Path)

		var payload struct {
			Items []models.RemoteItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Len(t, payload.Items, 2)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := a.BatchSet(context.Background(), []models.RemoteItem{
		{ID: "a", Title: "nenya-settings 1/2", Body: "x"},
		{ID: "b", Title: "nenya-settings 2/2", Body: "y"},
	})
	require.NoError(t, err)
}

func TestBatchGet_EmptyIDsSkipsRequest(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	items, err := a.BatchGet(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestUnauthorized_MapsToAuthExpired(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))

	_, err := a.ListItems(context.Background(), ItemQuery{})
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestRateLimited_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))

	_, err := a.ListItems(context.Background(), ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestServerError_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := a.ListItems(context.Background(), ItemQuery{})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestNotFound_NoRetry(t *testing.T) {
	var calls atomic.Int32
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))

	err := a.DeleteItem(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOversizeBody_RejectedLocally(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("oversize body must never reach the service")
	}))

	_, err := a.CreateItem(context.Background(), models.RemoteItem{
		Title: "big",
		Body:  strings.Repeat("あ", models.RemoteBodyLimit+1),
	})
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestBodyLimit_CountsRunesNotBytes(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"ok"}`))
	}))

	// exactly at the limit in runes, over it in bytes
	_, err := a.CreateItem(context.Background(), models.RemoteItem{
		Title: "fits",
		Body:  strings.Repeat("あ", models.RemoteBodyLimit),
	})
	require.NoError(t, err)
}

func TestExpiredJWT_FailsBeforeRequest(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("expired token must not produce a request")
	}))

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	a.SetToken(expired)

	_, lerr := a.ListItems(context.Background(), ItemQuery{})
	assert.ErrorIs(t, lerr, ErrAuthExpired)
}

func TestOpaqueToken_PassesThrough(t *testing.T) {
	a, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer not-a-jwt", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	a.SetToken("not-a-jwt")

	_, err := a.ListItems(context.Background(), ItemQuery{})
	require.NoError(t, err)
}
