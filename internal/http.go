// http is used by the CLI to talk to a running daemon's REST API.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"resty.dev/v3"

	"github.com/Xevion/go-buzz/types"
)

// ErrServer is returned for 4xx/5xx responses. The daemon's error message is appended.
var ErrServer = errors.New("server returned an error")

type HttpClient struct {
	client      *resty.Client
	baseRequest *resty.Request
}

// TimesResponse is the body of GET /api/times.
type TimesResponse struct {
	Times []types.BuzzTime `json:"times"`
}

// AddTimeRequest is the body of POST /api/times. Either Time or Sun is set.
type AddTimeRequest struct {
	Time   types.TimeString     `json:"time,omitempty"`
	Sun    string               `json:"sun,omitempty"`
	Offset types.DurationString `json:"offset,omitempty"`
}

// AddTimeResponse reports the resolved time and whether it was new.
type AddTimeResponse struct {
	Time  types.BuzzTime `json:"time"`
	Added bool           `json:"added"`
}

type VolumeRequest struct {
	Level float64 `json:"level"`
}

type TestResponse struct {
	Started bool `json:"started"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHttpClient(ctx context.Context, baseUrl *url.URL) *HttpClient {
	// Shallow copy the URL to avoid modifying the original
	u := *baseUrl
	u.Path = "/api"

	client := resty.New().
		SetBaseURL(u.String()).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		AddRetryConditions(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("User-Agent", AppID+"/"+currentVersion).
		SetContext(ctx)

	return &HttpClient{
		client: client,
		baseRequest: client.R().
			SetHeader("Accept", "application/json").
			SetError(&ErrorResponse{}),
	}
}

// Close releases idle connections.
func (c *HttpClient) Close() error {
	return c.client.Close()
}

// getRequest returns a new request
func (c *HttpClient) getRequest() *resty.Request {
	return c.baseRequest.Clone(c.client.Context())
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("error making HTTP request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		if e, ok := resp.Error().(*ErrorResponse); ok && e.Error != "" {
			return fmt.Errorf("%w: %s: %s", ErrServer, resp.Status(), e.Error)
		}
		return fmt.Errorf("%w: %s", ErrServer, resp.Status())
	}
	return nil
}

// Times returns the configured buzz times.
func (c *HttpClient) Times() ([]types.BuzzTime, error) {
	var out TimesResponse
	resp, err := c.getRequest().SetResult(&out).Get("/times")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Times, nil
}

// AddTime adds a fixed "HH:MM" time.
func (c *HttpClient) AddTime(t types.TimeString) (AddTimeResponse, error) {
	return c.addTime(AddTimeRequest{Time: t})
}

// AddSun adds today's sunrise or sunset, shifted by offset.
func (c *HttpClient) AddSun(sunset bool, offset types.DurationString) (AddTimeResponse, error) {
	sun := "sunrise"
	if sunset {
		sun = "sunset"
	}
	return c.addTime(AddTimeRequest{Sun: sun, Offset: offset})
}

func (c *HttpClient) addTime(body AddTimeRequest) (AddTimeResponse, error) {
	var out AddTimeResponse
	resp, err := c.getRequest().
		SetContentType("application/json").
		SetBody(body).
		SetResult(&out).
		Post("/times")
	if err := checkResponse(resp, err); err != nil {
		return AddTimeResponse{}, err
	}
	return out, nil
}

// RemoveTime removes a time. Removing an absent time is not an error.
func (c *HttpClient) RemoveTime(t types.TimeString) error {
	resp, err := c.getRequest().
		SetPathParam("time", string(t)).
		Delete("/times/{time}")
	return checkResponse(resp, err)
}

// SetAudio uploads a custom alert clip.
func (c *HttpClient) SetAudio(name string, r io.Reader) error {
	resp, err := c.getRequest().
		SetFileReader("file", name, r).
		Put("/audio")
	return checkResponse(resp, err)
}

// ClearAudio goes back to the synthesized tone.
func (c *HttpClient) ClearAudio() error {
	resp, err := c.getRequest().Delete("/audio")
	return checkResponse(resp, err)
}

func (c *HttpClient) SetVolume(level float64) error {
	resp, err := c.getRequest().
		SetContentType("application/json").
		SetBody(VolumeRequest{Level: level}).
		Put("/volume")
	return checkResponse(resp, err)
}

// Test fires a test buzz. started is false if a buzz was already in progress.
func (c *HttpClient) Test() (started bool, err error) {
	var out TestResponse
	resp, err := c.getRequest().SetResult(&out).Post("/test")
	if err := checkResponse(resp, err); err != nil {
		return false, err
	}
	return out.Started, nil
}

func (c *HttpClient) Status() (types.Status, error) {
	var out types.Status
	resp, err := c.getRequest().SetResult(&out).Get("/status")
	if err := checkResponse(resp, err); err != nil {
		return types.Status{}, err
	}
	return out, nil
}
