package ota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

type Client struct {
	HTTPClient *http.Client
	Base       *url.URL
}

func (c *Client) init() error {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Base == nil {
		var err error
		c.Base, err = url.Parse("http://localhost:8080/")
		return err
	}
	return nil
}

// Upload sends the .ipa read from r as name to the server.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*Upload, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	var (
		pr, pw = io.Pipe()
		mw     = multipart.NewWriter(pw)
	)

	go func() {
		if err := func() error {
			part, err := mw.CreateFormFile("file", name)
			if err != nil {
				return err
			}

			if _, err = io.Copy(part, r); err != nil {
				return err
			}

			return mw.Close()
		}(); err != nil {
			_ = pw.CloseWithError(err)
			return
		}

		_ = pw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base.JoinPath("/api/upload").String(), pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	upload := &Upload{}
	if err = c.do(req, upload); err != nil {
		return nil, err
	}

	return upload, nil
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	status := &Status{}
	if err := c.get(ctx, "/api/status", status); err != nil {
		return nil, err
	}

	return status, nil
}

func (c *Client) Index(ctx context.Context) (*Index, error) {
	index := &Index{}
	if err := c.get(ctx, "/", index); err != nil {
		return nil, err
	}

	return index, nil
}

func (c *Client) Readyz(ctx context.Context) error {
	return c.get(ctx, "/readyz", nil)
}

func (c *Client) Healthz(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil)
}

func (c *Client) get(ctx context.Context, path string, a any) error {
	if err := c.init(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base.JoinPath(path).String(), nil)
	if err != nil {
		return err
	}

	if a != nil {
		req.Header.Set("Accept", "application/json")
	}

	return c.do(req, a)
}

func (c *Client) do(req *http.Request, a any) error {
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body := &ErrorResponse{}
		if err = json.NewDecoder(res.Body).Decode(body); err == nil && body.Error != "" {
			return fmt.Errorf("http status code %d: %s", res.StatusCode, body.Error)
		}

		return fmt.Errorf("http status code %d", res.StatusCode)
	}

	if a == nil {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(a)
}
