package mosyle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-sync/core/failure"
	"fleet-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL + "/v1/",
		AccessToken: "tok",
		Email:       "admin@example.com",
		Password:    "pw",
	})
}

func loginHandler(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	assert.Equal(t, "tok", r.Header.Get("accessToken"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	assert.Equal(t, "admin@example.com", body["email"])
	w.Header().Set("Authorization", "Bearer jwt-1")
	_, _ = io.WriteString(w, `{"status":"OK"}`)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/login", r.URL.Path)
		loginHandler(t, w, r)
	})
	require.NoError(t, c.Login(context.Background()))

	jwt, err := c.session()
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-1", jwt)
}

func TestLogin_NoToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"OK"}`)
	})
	err := c.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JWT")
}

func TestLogin_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.ErrorIs(t, c.Login(context.Background()), failure.ErrTransport)
}

func TestLogin_MissingCredentials(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"})
	assert.Error(t, c.Login(context.Background()))
}

func TestListDevices_RequiresLogin(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused", AccessToken: "tok", Email: "a@b"})
	_, err := c.ListDevices(context.Background(), reconcile.ClassMac)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestListDevices_Paginates(t *testing.T) {
	var pages []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/login" {
			loginHandler(t, w, r)
			return
		}
		assert.Equal(t, "/v1/listdevices", r.URL.Path)
		assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))

		var req listRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tok", req.AccessToken)
		assert.Equal(t, "ios", req.Options.OS)
		assert.Contains(t, req.Options.SpecificColumns, "useremail")
		pages = append(pages, req.Options.Page)

		switch req.Options.Page {
		case 1:
			_, _ = io.WriteString(w, `{"status":"OK","response":{"rows":"3","page_size":2,"devices":[
				{"serial_number":" S1 ","device_name":"iPad 1","device_model_name":"iPad Air ","device_model":"iPad13,1","asset_tag":"T1","open_direct_device_link":"https://m/1","username":"Ann Lee","useremail":"ann@example.com"},
				{"serial_number":"S2","device_name":"iPad 2","device_model_name":"iPad Air"}]}}`)
		case 2:
			_, _ = io.WriteString(w, `{"status":"OK","response":{"rows":3,"page_size":2,"devices":[{"serial_number":"S3"}]}}`)
		default:
			t.Errorf("unexpected page %d", req.Options.Page)
		}
	})

	require.NoError(t, c.Login(context.Background()))
	devices, err := c.ListDevices(context.Background(), reconcile.ClassIOS)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, pages)
	require.Len(t, devices, 3)
	assert.Equal(t, reconcile.Device{
		SerialNumber: "S1",
		Name:         "iPad 1",
		ModelName:    "iPad Air",
		ModelNumber:  "iPad13,1",
		AssetTag:     "T1",
		Link:         "https://m/1",
		OwnerName:    "Ann Lee",
		OwnerEmail:   "ann@example.com",
	}, devices[0])
	assert.False(t, devices[1].HasOwner())
	assert.Equal(t, "S3", devices[2].SerialNumber)
}

func TestListDevices_StopsOnEmptyPage(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/login" {
			loginHandler(t, w, r)
			return
		}
		calls++
		if calls == 1 {
			_, _ = io.WriteString(w, `{"status":"OK","response":{"devices":[{"serial_number":"S1"}]}}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"OK","response":{"devices":[]}}`)
	})

	require.NoError(t, c.Login(context.Background()))
	devices, err := c.ListDevices(context.Background(), reconcile.ClassTVOS)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, 2, calls)
}

func TestListDevices_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantLen int
	}{
		{"NotFound", http.StatusOK, `{"status":"DEVICES_NOTFOUND"}`, nil, 0},
		{"Logical", http.StatusOK, `{"status":"ERROR","message":"Invalid os"}`, failure.ErrLogical, 0},
		{"Transport", http.StatusInternalServerError, `oops`, failure.ErrTransport, 0},
		{"Garbage", http.StatusOK, `<html>`, failure.ErrTransport, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/v1/login" {
					loginHandler(t, w, r)
					return
				}
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			})
			require.NoError(t, c.Login(context.Background()))

			devices, err := c.ListDevices(context.Background(), reconcile.ClassMac)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, devices, tt.wantLen)
		})
	}
}
