package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title>Rice blast</title><script>var x=1</script></head>
<body><nav>Home | About</nav>
<main><h1>Rice blast</h1><p>Spindle shaped   lesions on leaves.</p><ul><li>Use tricyclazole</li></ul></main>
<footer>copyright</footer></body></html>`

func serve(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/blast", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Zinc deficiency in rice\r\nApply zinc sulphate.  \n"))
	})
	mux.HandleFunc("/data.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("x", 4096)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL)
	return srv, u.Host
}

func TestFetchHTML(t *testing.T) {
	srv, host := serve(t)
	p, err := New([]string{host}, 0).Fetch(context.Background(), srv.URL+"/blast")
	require.NoError(t, err)
	assert.Equal(t, "Rice blast", p.Title)
	assert.Equal(t, "Rice blast\nSpindle shaped lesions on leaves.\nUse tricyclazole", p.Text)
	assert.NotContains(t, p.Text, "copyright")
}

func TestFetchPlainText(t *testing.T) {
	srv, host := serve(t)
	p, err := New([]string{host}, 0).Fetch(context.Background(), srv.URL+"/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "Zinc deficiency in rice", p.Title)
	assert.Equal(t, "Zinc deficiency in rice\nApply zinc sulphate.", p.Text)
}

func TestFetchRejects(t *testing.T) {
	srv, host := serve(t)
	f := New([]string{host}, 1024)

	_, err := New(nil, 0).Fetch(context.Background(), srv.URL+"/blast")
	assert.ErrorIs(t, err, ErrDomainNotAllowed)

	_, err = f.Fetch(context.Background(), "ftp://"+host+"/x")
	assert.ErrorContains(t, err, "bad url")

	_, err = f.Fetch(context.Background(), srv.URL+"/data.pdf")
	assert.ErrorContains(t, err, "unsupported content-type")

	_, err = f.Fetch(context.Background(), srv.URL+"/big")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "status 404")
}

func TestFetchRedirectMustStayOnAllowList(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("internal only"))
	}))
	defer internal.Close()

	srv, host := serve(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/away", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/secret", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/notes.txt", http.StatusFound)
	})
	front := httptest.NewServer(mux)
	defer front.Close()
	fu, _ := url.Parse(front.URL)

	f := New([]string{fu.Host, host}, 0)
	p, err := f.Fetch(context.Background(), front.URL+"/away")
	assert.ErrorIs(t, err, ErrDomainNotAllowed)
	assert.Nil(t, p)

	p, err = f.Fetch(context.Background(), front.URL+"/home")
	require.NoError(t, err)
	assert.Equal(t, "Zinc deficiency in rice", p.Title)
}
