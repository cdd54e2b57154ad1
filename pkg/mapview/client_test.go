package mapview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigapbencana/rambu_api/pkg/session"
)

func TestClientInjectsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[{"id":1,"name":"Aceh"}]}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	store.Set("token123")
	c := NewClient(srv.URL, store)

	options, err := c.Provinces(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "Bearer token123", gotAuth)
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	store.Set("stale")
	c := NewClient(srv.URL, store)

	_, err := c.Provinces(context.Background())
	require.Error(t, err)
	_, ok := store.Token()
	assert.False(t, ok, "401 must clear the session store")
}

func TestClientToleratesBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"kode":5,"nama":"Bali"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewMemoryStore())
	options, err := c.Provinces(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, Option{ID: 5, Label: "Bali"}, options[0])
}

func TestClientGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ref/geografis", r.URL.Path)
		w.Write([]byte(`{"data":{"province":"DKI Jakarta","city":"Jakarta Selatan","district":"Kebayoran Baru","village":"Senayan"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewMemoryStore())
	result, err := c.Geocode(context.Background(), -6.2, 106.8)
	require.NoError(t, err)
	assert.Equal(t, "DKI Jakarta", result.Province)
	assert.Equal(t, "Senayan", result.Village)
}

func TestClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewMemoryStore())
	_, err := c.Signs(context.Background(), Filter{})
	assert.Error(t, err)
}

func TestClientCreateSignMultipart(t *testing.T) {
	var path string
	var fields map[string]string
	var photoNames []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		for name := range r.MultipartForm.File {
			photoNames = append(photoNames, name)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, session.NewMemoryStore())
	err := c.CreateSign(context.Background(), true,
		map[string]string{"lat": "-6.2", "lon": "106.8", "name": "Rambu"},
		[]Photo{{Field: "photo_gps", Filename: "gps.jpg", Data: []byte("jpeg")}})
	require.NoError(t, err)

	assert.Equal(t, "/rambu-simulasi", path)
	assert.Equal(t, "-6.2", fields["lat"])
	assert.Contains(t, photoNames, "photo_gps")
}
