package render

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/umlgen/internal/diagram"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
	"github.com/ziadkadry99/umlgen/internal/viewer"
)

const svg = `<svg xmlns="http://www.w3.org/2000/svg"></svg>`

func newServer(t *testing.T, status int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if status != http.StatusOK {
			http.Error(w, "bad diagram", status)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(svg))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t, http.StatusOK, nil)
	img, err := NewFetcher(srv.Client(), nil).Fetch(context.Background(), srv.URL+"/svg/abc")
	require.NoError(t, err)
	assert.Equal(t, svg, string(img.Data))
	assert.Equal(t, "image/svg+xml", img.ContentType)
}

func TestFetchErrorStatusNoRetry(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, http.StatusBadRequest, &hits)

	_, err := NewFetcher(srv.Client(), nil).Fetch(context.Background(), srv.URL+"/svg/abc")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusBadRequest, fe.Status)
	assert.Equal(t, "bad diagram", fe.Body)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchRejectsOversizedImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(make([]byte, maxImageBytes+1))
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.Client(), nil).Fetch(context.Background(), srv.URL+"/svg/big")
	require.ErrorIs(t, err, ErrImageTooLarge)

	path := filepath.Join(t.TempDir(), "big.svg")
	_, err = NewFetcher(srv.Client(), nil).Download(context.Background(), srv.URL+"/svg/big", path)
	require.ErrorIs(t, err, ErrImageTooLarge)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no partial file may be written")
}

func TestFetchAcceptsImageAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, maxImageBytes))
	}))
	defer srv.Close()

	img, err := NewFetcher(srv.Client(), nil).Fetch(context.Background(), srv.URL+"/svg/edge")
	require.NoError(t, err)
	assert.Len(t, img.Data, maxImageBytes)
}

func TestDownload(t *testing.T) {
	srv := newServer(t, http.StatusOK, nil)
	out := filepath.Join(t.TempDir(), "nested", "diagram.svg")

	path, err := NewFetcher(srv.Client(), nil).Download(context.Background(), srv.URL+"/svg/abc", out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, svg, string(data))
}

func TestDownloadDefaultName(t *testing.T) {
	srv := newServer(t, http.StatusOK, nil)
	t.Chdir(t.TempDir())

	path, err := NewFetcher(srv.Client(), nil).Download(context.Background(), srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, path)
	_, err = os.Stat(DefaultFileName)
	assert.NoError(t, err)
}

func TestProbeReportsToViewer(t *testing.T) {
	ok := newServer(t, http.StatusOK, nil)
	bad := newServer(t, http.StatusInternalServerError, nil)
	f := NewFetcher(nil, nil)

	v, err := viewer.New(viewer.DefaultOptions())
	require.NoError(t, err)
	v.SetStatus(diagram.StatusSucceeded)

	url := bad.URL + "/svg/x"
	v.Show(plantuml.Encoded{Token: "x", URL: url})
	st := f.Probe(context.Background(), url, v)
	assert.Equal(t, viewer.DisplayImageError, st.Display)
	assert.Equal(t, diagram.StatusSucceeded, st.Status)

	url = ok.URL + "/svg/y"
	v.Show(plantuml.Encoded{Token: "y", URL: url})
	st = f.Probe(context.Background(), url, v)
	assert.Equal(t, viewer.DisplayImage, st.Display)
	assert.Equal(t, viewer.ImageLoaded, st.Image)
}
