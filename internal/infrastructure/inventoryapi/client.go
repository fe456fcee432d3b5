// Package inventoryapi adaptador HTTP del servicio externo que entrega el historial de
// movimientos por SKU.
package inventoryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-movimientos/internal/application/dto"
	"github.com/jhoicas/inventario-movimientos/internal/application/ports"
	"github.com/jhoicas/inventario-movimientos/internal/domain"
)

// Verificar en tiempo de compilación que Client implementa MovementSource.
var _ ports.MovementSource = (*Client)(nil)

const (
	movementsPath  = "/api/stock/%s/movements"
	maxBodyBytes   = 4 << 20
	defaultTimeout = 15 * time.Second
)

// Client cliente REST del servicio de inventario. Usa net/http de la librería estándar.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient construye el adaptador. timeout <= 0 usa 15 s.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras del protocolo ─────────────────────────────────────────────────

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type wireLog struct {
	SKU          string         `json:"sku"`
	ProductID    flexString     `json:"product_id"`
	ProductName  string         `json:"product_name"`
	CurrentStock flexInt        `json:"current_stock"`
	Movements    []wireMovement `json:"movements"`
}

type wireMovement struct {
	ID           flexString `json:"id"`
	OldStock     flexInt    `json:"old_stock"`
	NewStock     flexInt    `json:"new_stock"`
	ChangeAmount flexInt    `json:"change_amount"`
	ChangeType   string     `json:"change_type"`
	Reason       string     `json:"reason"`
	UserID       flexString `json:"user_id"`
	UserName     string     `json:"user_name"`
	OrderID      flexInt    `json:"order_id"`
	CreatedAt    string     `json:"created_at"`
}

// flexString acepta string, número o null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id inválido: %s", s)
	}
	*f = flexString(n.String())
	return nil
}

// flexInt acepta número, string numérico o null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("entero inválido: %s", s)
	}
	*f = flexInt(n)
	return nil
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// FetchMovementLog consulta el historial del SKU. Un cuerpo vacío, con success=false o sin
// identificación del producto devuelve domain.ErrEmptyResponse.
func (c *Client) FetchMovementLog(ctx context.Context, sku string) (*dto.MovementLogDTO, error) {
	endpoint := c.baseURL + fmt.Sprintf(movementsPath, url.PathEscape(sku))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("inventario: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("inventario: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("inventario: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("inventario: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventario: HTTP %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	log, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return log.toDTO(sku), nil
}

func decode(raw []byte) (*wireLog, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, domain.ErrEmptyResponse
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmptyResponse, err)
	}
	if env.Success != nil && !*env.Success {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyResponse, env.Error)
	}

	payload := raw
	if len(env.Data) > 0 {
		payload = env.Data
	}
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return nil, domain.ErrEmptyResponse
	}

	var log wireLog
	if err := json.Unmarshal(payload, &log); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmptyResponse, err)
	}
	if log.SKU == "" && log.ProductID == "" {
		return nil, domain.ErrEmptyResponse
	}
	return &log, nil
}

func (w *wireLog) toDTO(requested string) *dto.MovementLogDTO {
	sku := w.SKU
	if sku == "" {
		sku = requested
	}
	out := &dto.MovementLogDTO{
		SKU:          sku,
		ProductID:    string(w.ProductID),
		ProductName:  w.ProductName,
		CurrentStock: int(w.CurrentStock),
		Movements:    make([]dto.MovementLogEntryDTO, 0, len(w.Movements)),
	}
	for _, m := range w.Movements {
		out.Movements = append(out.Movements, dto.MovementLogEntryDTO{
			ID:           string(m.ID),
			OldStock:     int(m.OldStock),
			NewStock:     int(m.NewStock),
			ChangeAmount: int(m.ChangeAmount),
			ChangeType:   m.ChangeType,
			Reason:       m.Reason,
			UserID:       string(m.UserID),
			UserName:     m.UserName,
			OrderID:      int64(m.OrderID),
			CreatedAt:    m.CreatedAt,
		})
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
