package eodhd

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"
)

// diskCache is an http.RoundTripper that caches GET responses on disk. The
// cache key embeds the current day (or month), so entries expire on their own
// without any eviction bookkeeping.
type diskCache struct {
	base    http.RoundTripper
	monthly bool
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	period := time.Now().UTC().Format("2006-01-02")
	name := "daily"
	if c.monthly {
		period = time.Now().UTC().Format("2006-01")
		name = "monthly"
	}
	key := fmt.Sprintf("%s %s %s", period, req.Method, req.URL.String())
	key = fmt.Sprintf("%s-%x", name, sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(os.TempDir(), key))
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// newDailyCachingClient returns a client whose cache entries expire daily.
func newDailyCachingClient() *http.Client {
	return &http.Client{Transport: &diskCache{base: http.DefaultTransport}}
}

// newMonthlyCachingClient returns a client whose cache entries expire
// monthly, for slow-moving reference data like symbol listings.
func newMonthlyCachingClient() *http.Client {
	return &http.Client{Transport: &diskCache{base: http.DefaultTransport, monthly: true}}
}
