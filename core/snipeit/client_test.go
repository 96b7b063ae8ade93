package snipeit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-sync/core/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/v1/", APIToken: "secret"})
}

func TestSanitizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"":                                 "",
		" https://assets.example/api/v1 ":  "https://assets.example/api/v1",
		"https://assets.example/api/v1///": "https://assets.example/api/v1",
	}
	for raw, want := range cases {
		assert.Equal(t, want, sanitizeBaseURL(raw), raw)
	}
}

func TestFlattenMessages(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"Empty", ``, nil},
		{"Null", `null`, nil},
		{"String", `"That asset is already checked in."`, []string{"That asset is already checked in."}},
		{"List", `["a","b"]`, []string{"a", "b"}},
		{"Fields", `{"serial":["The serial must be unique."],"asset_tag":"taken"}`, []string{"asset_tag: taken", "serial: The serial must be unique."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flattenMessages(json.RawMessage(tt.raw)))
		})
	}
}

func TestFindAssetBySerial(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/hardware/byserial/C02X%2F1", r.URL.EscapedPath())
			assert.Equal(t, "false", r.URL.Query().Get("deleted"))
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, `{"total":1,"rows":[{"id":9,"name":"Lab &amp; Studio","asset_tag":"A-1","serial":"C02X/1","notes":"Link: x","assigned_to":{"id":4,"type":"user"}}]}`)
		})

		a, found, err := c.FindAssetBySerial(context.Background(), "C02X/1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 9, a.ID)
		assert.Equal(t, "Lab & Studio", a.Name)
		require.NotNil(t, a.AssignedTo)
		assert.Equal(t, 4, a.AssignedTo.ID)
	})

	t.Run("NotFoundStatus", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, found, err := c.FindAssetBySerial(context.Background(), "S1")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("EmbeddedError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"error","messages":"Asset does not exist.","payload":null}`)
		})
		_, found, err := c.FindAssetBySerial(context.Background(), "S1")
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ServerError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		})
		_, found, err := c.FindAssetBySerial(context.Background(), "S1")
		require.Error(t, err)
		assert.False(t, found)
		assert.ErrorIs(t, err, failure.ErrTransport)

		var te *failure.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	})
}

func TestCreateAsset(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/hardware", r.URL.Path)
			var req AssetRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "S1", req.Serial)
			assert.Equal(t, 3, req.ModelID)
			assert.False(t, req.Archived)
			_, _ = io.WriteString(w, `{"status":"success","messages":"Asset created","payload":{"id":77,"serial":"S1","asset_tag":"T1"}}`)
		})

		a, err := c.CreateAsset(context.Background(), AssetRequest{Serial: "S1", AssetTag: "T1", ModelID: 3})
		require.NoError(t, err)
		assert.Equal(t, 77, a.ID)
	})

	t.Run("LogicalFailure", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"error","messages":{"asset_tag":["The asset tag must be unique."]},"payload":null}`)
		})

		_, err := c.CreateAsset(context.Background(), AssetRequest{Serial: "S1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, failure.ErrLogical)
		assert.Contains(t, err.Error(), "asset_tag: The asset tag must be unique.")
	})

	t.Run("UnexpectedStatus", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.CreateAsset(context.Background(), AssetRequest{Serial: "S1"})
		assert.ErrorIs(t, err, failure.ErrTransport)
	})
}

func TestUpdateAsset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/hardware/12", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"success","payload":{"id":12,"name":"New"}}`)
	})
	a, err := c.UpdateAsset(context.Background(), 12, AssetRequest{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, 12, a.ID)
	assert.Equal(t, "New", a.Name)
}

func TestCheckinAsset_AlreadyCheckedIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/hardware/5/checkin", r.URL.Path)
		var req CheckinRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.StatusID)
		_, _ = io.WriteString(w, `{"status":"error","messages":"That asset is already checked in.","payload":{"asset":"T1"}}`)
	})

	err := c.CheckinAsset(context.Background(), 5, CheckinRequest{StatusID: 2, Note: "n"})
	require.Error(t, err)
	assert.True(t, failure.IsAlreadyCheckedIn(err))
}

func TestCheckoutAsset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user", req.CheckoutToType)
		assert.Equal(t, 8, req.AssignedUser)
		_, _ = io.WriteString(w, `{"status":"success","messages":"Asset checked out successfully."}`)
	})
	assert.NoError(t, c.CheckoutAsset(context.Background(), 5, CheckoutRequest{CheckoutToType: "user", AssignedUser: 8, StatusID: 2}))
}

func TestFindUserByEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ann@example.com", r.URL.Query().Get("email"))
		_, _ = io.WriteString(w, `{"total":2,"rows":[{"id":1,"email":"annie@example.com"},{"id":2,"email":"Ann@Example.com"}]}`)
	})

	u, found, err := c.FindUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, u.ID)

	_, found, err = c.FindUserByEmail(context.Background(), "ann@example.com ")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFindUserByEmail_NoExactMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total":1,"rows":[{"id":1,"email":"someone@example.com"}]}`)
	})
	_, found, err := c.FindUserByEmail(context.Background(), "ann@example.com")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFindModelByName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("search") {
		case "iPad Air":
			_, _ = io.WriteString(w, `{"total":2,"rows":[{"id":3,"name":"iPad Air (5th generation)"},{"id":4,"name":"iPad Air"}]}`)
		case "Mac mini":
			_, _ = io.WriteString(w, `{"total":1,"rows":[{"id":6,"name":"Mac mini (M2)"}]}`)
		default:
			_, _ = io.WriteString(w, `{"total":0,"rows":[]}`)
		}
	})

	m, found, err := c.FindModelByName(context.Background(), "iPad Air")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, m.ID)

	m, found, err = c.FindModelByName(context.Background(), "Mac mini")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 6, m.ID)

	_, found, err = c.FindModelByName(context.Background(), "Apple TV")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateModel_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","payload":{}}`)
	})
	_, err := c.CreateModel(context.Background(), ModelRequest{Name: "x"})
	assert.Error(t, err)
}

func TestPingAndExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/models":
			_, _ = io.WriteString(w, `{"total":0,"rows":[]}`)
		case "/api/v1/manufacturers/1":
			_, _ = io.WriteString(w, `{"id":1,"name":"Apple"}`)
		case "/api/v1/statuslabels/2":
			_, _ = io.WriteString(w, `{"status":"error","messages":"Status label not found"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	assert.NoError(t, c.Ping(context.Background()))

	ok, err := c.Exists(context.Background(), RefManufacturer, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), RefStatusLabel, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Exists(context.Background(), RefSupplier, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPing_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, failure.ErrTransport)
}

func TestClient_MissingBaseURL(t *testing.T) {
	c := NewClient(Config{})
	_, _, err := c.FindAssetBySerial(context.Background(), "S1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base url not configured")
}
