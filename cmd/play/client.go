package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/connect-n/game/engine"
	"github.com/wricardo/connect-n/game/service"
)

// errRejected is returned when the server refuses a drop
var errRejected = errors.New("drop rejected")

// Client drives a running server over REST
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type dropRequest struct {
	Column  *int  `json:"column,omitempty"`
	Columns []int `json:"columns,omitempty"`
	Reset   bool  `json:"reset,omitempty"`
}

func (c *Client) sessionURL(suffix string) string {
	return fmt.Sprintf("%s/api/sessions/%s%s", c.baseURL, url.PathEscape(c.sessionID), suffix)
}

func (c *Client) CreateSession(configName string) (*service.SessionInfo, error) {
	var reqBody []byte
	var err error

	if configName != "" {
		reqBody, err = json.Marshal(map[string]string{"config_id": configName})
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create session failed: %s - %s", resp.Status, string(body))
	}

	var session service.SessionInfo
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}

	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetState() (*engine.GameState, error) {
	resp, err := c.client.Get(c.sessionURL("/state"))
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get state failed: %s - %s", resp.Status, string(bytes.TrimSpace(body)))
	}

	var state engine.GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	return &state, nil
}

// Drop drops into a single column. A rejected drop returns the result
// together with errRejected.
func (c *Client) Drop(column int) (*service.DropResult, error) {
	var result service.DropResult
	if err := c.post("/drop", dropRequest{Column: &column}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return &result, fmt.Errorf("%w: %s", errRejected, result.ErrorCode)
	}
	return &result, nil
}

// BulkDrop drops into several columns, alternating players
func (c *Client) BulkDrop(columns []int) (*service.BulkDropResult, error) {
	var result service.BulkDropResult
	if err := c.post("/bulk-drop", dropRequest{Columns: columns}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(suffix string, req interface{}, result interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.client.Post(c.sessionURL(suffix), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", suffix, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	// Rejected drops come back as 409/422 with a full result body
	switch resp.StatusCode {
	case http.StatusOK, http.StatusConflict, http.StatusUnprocessableEntity:
	default:
		return fmt.Errorf("%s failed: %s - %s", suffix, resp.Status, string(bytes.TrimSpace(data)))
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%s failed: %s", suffix, errResp.Error)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse %s response: %w", suffix, err)
	}
	return nil
}
