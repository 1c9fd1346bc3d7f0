package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"swagger_interface_helper/page"
)

// newInjectingProxy forwards everything to the Swagger UI host and mounts the
// helper container plus script into HTML pages on the way back.
func newInjectingProxy(target *url.URL, scriptSrc string) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
		// 需要未压缩的 HTML 才能注入
		req.Header.Del("Accept-Encoding")
	}
	proxy.ModifyResponse = func(resp *http.Response) error {
		if resp.StatusCode != http.StatusOK || !isHTML(resp.Header.Get("Content-Type")) {
			return nil
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		created, err := page.Inject(bytes.NewReader(raw), &buf, scriptSrc)
		if err != nil {
			log.Warn().Err(err).Str("path", resp.Request.URL.Path).Msg("inject helper failed")
			buf.Reset()
			buf.Write(raw)
		} else if created {
			log.Debug().Str("path", resp.Request.URL.Path).Msg("helper mounted")
		}
		resp.Body = io.NopCloser(&buf)
		resp.ContentLength = int64(buf.Len())
		resp.Header.Set("Content-Length", strconv.Itoa(buf.Len()))
		resp.Header.Del("Content-Encoding")
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream unavailable")
		jsonErr(w, "upstream unavailable", http.StatusBadGateway)
	}
	return proxy
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}
