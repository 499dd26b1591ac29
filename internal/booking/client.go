package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Account is the authority's view of the signed-in agency.
type Account struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Email         string   `json:"email"`
	AgencyName    string   `json:"agency_name"`
	AgencyAddress string   `json:"agency_address"`
	PartitaIVA    string   `json:"partita_iva"`
	SedeLegale    string   `json:"sede_legale"`
	CodiceUnivoco string   `json:"codice_univoco"`
	Roles         []string `json:"roles"`
}

// Registration is the profile submitted when creating an account.
type Registration struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	AgencyName    string `json:"agency_name"`
	AgencyAddress string `json:"agency_address"`
	PartitaIVA    string `json:"partita_iva"`
	SedeLegale    string `json:"sede_legale"`
	CodiceUnivoco string `json:"codice_univoco"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

// Appointment mirrors the authority's appointment resource.
type Appointment struct {
	ID                 string    `json:"id"`
	Date               string    `json:"date"`
	Time               string    `json:"time"`
	DurationMinutes    int       `json:"duration_minutes"`
	Status             string    `json:"status"`
	AppointmentAddress string    `json:"appointment_address"`
	ContactPerson      string    `json:"contact_person"`
	ContactPhone       string    `json:"contact_phone"`
	IntercomName       string    `json:"intercom_name,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Slot is one grid position of a day's availability.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Form carries the booking details the agency fills in.
type Form struct {
	AppointmentAddress string `json:"appointment_address"`
	ContactPerson      string `json:"contact_person"`
	ContactPhone       string `json:"contact_phone"`
	IntercomName       string `json:"intercom_name"`
}

// LoginResult is the authority's answer to a successful login.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Account   `json:"user"`
}

// Client is the typed REST client for the scheduling authority. It is safe
// for concurrent use; the bearer token is owned by the SessionStore.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the authority at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// SetToken installs the bearer token used on authenticated calls. An empty
// string clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token. The token is not installed on the
// client; that is the SessionStore's decision.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.call(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its id. It never yields a session.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/v1/auth/register", reg, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Me returns the account the installed token belongs to.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var out Account
	if err := c.call(ctx, http.MethodGet, "/v1/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Availability fetches the slot grid for a date.
func (c *Client) Availability(ctx context.Context, date string) ([]Slot, error) {
	var out struct {
		Date  string `json:"date"`
		Slots []Slot `json:"slots"`
	}
	if err := c.call(ctx, http.MethodGet, "/v1/appointments/availability/"+date, nil, &out); err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// Book reserves the slot with the given form details.
func (c *Client) Book(ctx context.Context, date, slot string, form Form) (*Appointment, error) {
	payload := map[string]string{
		"date":                date,
		"time":                slot,
		"appointment_address": form.AppointmentAddress,
		"contact_person":      form.ContactPerson,
		"contact_phone":       form.ContactPhone,
		"intercom_name":       form.IntercomName,
	}
	var out Appointment
	if err := c.call(ctx, http.MethodPost, "/v1/appointments", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyAppointments lists the caller's appointments ordered by date then time.
func (c *Client) MyAppointments(ctx context.Context) ([]Appointment, error) {
	var out struct {
		Items []Appointment `json:"items"`
	}
	if err := c.call(ctx, http.MethodGet, "/v1/appointments/my", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CancelAppointment cancels one of the caller's appointments.
func (c *Client) CancelAppointment(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/v1/appointments/"+id, nil, nil)
}

// call runs one round trip and maps the response status onto the error
// taxonomy.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	msg := errorMessage(resp.Body)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuth
	case http.StatusBadRequest:
		return &ValidationError{Message: msg}
	case http.StatusConflict:
		return ErrConflict
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("booking: authority answered %d: %s", resp.StatusCode, msg)
	}
}

func errorMessage(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
