package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livestock-health/internal/domain/accessgrants"
	"livestock-health/internal/router"
)

func TestHTTP_EndToEnd_WithdrawalAndActionFeed(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"

	// 1) Owner crea explotación en AR
	farmID := createFarm(t, ts.URL, ownerID, map[string]any{
		"name":         "Estancia La Luisa",
		"country_code": "AR",
	})

	// 2) Alta de producto en catálogo
	productID := createJSON(t, ts.URL, ownerID, "/products", map[string]any{
		"name": "Oxitetraciclina LA",
		"type": "drug",
	})

	// 3) Dos indicaciones: universal (28 días carne) y AR (14 días).
	createJSON(t, ts.URL, ownerID, "/products/"+productID+"/indications", map[string]any{
		"species_id":           "sp-bovine",
		"route_id":             "rt-im",
		"dose_min":             1,
		"dose_max":             1,
		"dose_unit":            "ml/10kg",
		"withdrawal_meat_days": 28,
	})
	createJSON(t, ts.URL, ownerID, "/products/"+productID+"/indications", map[string]any{
		"species_id":           "sp-bovine",
		"route_id":             "rt-im",
		"country_code":         "AR",
		"dose_min":             1,
		"dose_max":             1,
		"dose_unit":            "ml/10kg",
		"withdrawal_meat_days": 14,
		"withdrawal_milk_days": 4,
	})

	// 4) La cascada prefiere la indicación del país sobre la universal
	{
		st, body := doReq(t, ts.URL, "GET",
			"/indications/resolve?product="+productID+"&species=sp-bovine&route=rt-im&country=AR", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 resolve, got %d body=%s", st, string(body))
		}
		var resp struct {
			Found      bool   `json:"found"`
			Tier       string `json:"tier"`
			Indication struct {
				WithdrawalMeatDays int `json:"withdrawal_meat_days"`
			} `json:"indication"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.Found || resp.Tier != "country" || resp.Indication.WithdrawalMeatDays != 14 {
			t.Fatalf("resolve inesperado: %s", string(body))
		}
	}

	// 5) Owner registra un animal
	animalID := createJSON(t, ts.URL, ownerID, "/farms/"+farmID+"/animals", map[string]any{
		"tag":        "AR-0001",
		"species_id": "sp-bovine",
		"sex":        "female",
	})

	// 6) Tratamiento con cálculo automático: usa la indicación AR (14 días)
	treatmentDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	{
		st, body := doReq(t, ts.URL, "POST", "/farms/"+farmID+"/treatments", ownerID, map[string]any{
			"animal_id":                 animalID,
			"product_id":                productID,
			"kind":                      "treatment",
			"date":                      treatmentDate.Format(time.RFC3339),
			"dose":                      35,
			"dose_unit":                 "ml",
			"route_id":                  "rt-im",
			"auto_calculate_withdrawal": true,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create treatment, got %d body=%s", st, string(body))
		}

		var resp struct {
			Treatment struct {
				WithdrawalEndDate *time.Time `json:"withdrawal_end_date"`
				WithdrawalSource  string     `json:"withdrawal_source"`
			} `json:"treatment"`
			Plan struct {
				Tier        string     `json:"tier"`
				MilkEndDate *time.Time `json:"milk_end_date"`
			} `json:"withdrawal_plan"`
		}
		_ = json.Unmarshal(body, &resp)

		wantMeat := treatmentDate.AddDate(0, 0, 14)
		if resp.Treatment.WithdrawalSource != "auto" {
			t.Fatalf("withdrawal_source = %q, quería auto", resp.Treatment.WithdrawalSource)
		}
		if resp.Treatment.WithdrawalEndDate == nil || !resp.Treatment.WithdrawalEndDate.Equal(wantMeat) {
			t.Fatalf("withdrawal_end_date = %v, quería %s", resp.Treatment.WithdrawalEndDate, wantMeat)
		}
		if resp.Plan.Tier != "country" || resp.Plan.MilkEndDate == nil {
			t.Fatalf("plan inesperado: %s", string(body))
		}
	}

	// 7) Lote con ventana cerrando en 2 días => acción crítica en el feed
	lotID := createJSON(t, ts.URL, ownerID, "/farms/"+farmID+"/lots", map[string]any{
		"name": "Engorde A",
	})
	{
		st, body := doReq(t, ts.URL, "PUT", "/farms/"+farmID+"/lots/"+lotID+"/withdrawal", ownerID, map[string]any{
			"version":             1,
			"withdrawal_end_date": time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 set withdrawal, got %d body=%s", st, string(body))
		}
	}

	// 8) Pesada sobre el umbral de venta => oportunidad
	{
		st, body := doReq(t, ts.URL, "POST", "/farms/"+farmID+"/animals/"+animalID+"/weights", ownerID, map[string]any{
			"weight_kg": 520,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record weight, got %d body=%s", st, string(body))
		}
	}

	// 9) Feed completo: 1 urgente (lote) + 1 oportunidad (animal)
	{
		st, body := doReq(t, ts.URL, "GET", "/farms/"+farmID+"/actions", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 actions, got %d body=%s", st, string(body))
		}
		var feed actionsFeed
		_ = json.Unmarshal(body, &feed)
		if feed.Summary.Urgent != 1 || feed.Summary.Opportunities != 1 {
			t.Fatalf("summary inesperado: %s", string(body))
		}
		if len(feed.Actions) < 2 || feed.Actions[0].Priority != "critical" {
			t.Fatalf("el feed debe abrir con la acción crítica: %s", string(body))
		}
	}

	// 10) Filtrado por urgencia: lista angosta, summary global intacto
	{
		st, body := doReq(t, ts.URL, "GET", "/farms/"+farmID+"/actions?urgency=urgent", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 filtered actions, got %d body=%s", st, string(body))
		}
		var feed actionsFeed
		_ = json.Unmarshal(body, &feed)
		if len(feed.Actions) != 1 || feed.Actions[0].Category != "urgent" {
			t.Fatalf("filtro urgent inesperado: %s", string(body))
		}
		if feed.Summary.Opportunities != 1 {
			t.Fatalf("el filtro no debe tocar el summary: %s", string(body))
		}
	}
}

func TestHTTP_EndToEnd_DelegationScopes(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	ownerID := "owner-1"
	delegateID := "vet-1"

	farmID := createFarm(t, ts.URL, ownerID, map[string]any{
		"name":         "Campo Norte",
		"country_code": "AR",
	})

	// 1) Delegado sin grant: 403 en el feed y en la explotación
	{
		st, _ := doReq(t, ts.URL, "GET", "/farms/"+farmID+"/actions", delegateID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before grant, got %d", st)
		}
	}

	// 2) Owner invita con scopes de lectura
	grantID := createJSON(t, ts.URL, ownerID, "/farms/"+farmID+"/grants", map[string]any{
		"grantee_user_id": delegateID,
		"scopes": []string{
			string(accessgrants.ScopeFarmRead),
			string(accessgrants.ScopeActionsRead),
		},
	})

	// 3) Delegado ve su invitación y acepta
	{
		st, body := doReq(t, ts.URL, "GET", "/me/grants", delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing my grants, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/accept", delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept grant, got %d body=%s", st, string(body))
		}
	}

	// 4) Con grant activo: feed y explotación accesibles
	{
		st, body := doReq(t, ts.URL, "GET", "/farms/"+farmID+"/actions", delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 actions by delegate, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/farms/"+farmID, delegateID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get farm by delegate, got %d body=%s", st, string(body))
		}
	}

	// 5) Pero sin treatments:create no puede registrar tratamientos
	{
		st, _ := doReq(t, ts.URL, "POST", "/farms/"+farmID+"/treatments", delegateID, map[string]any{
			"animal_id":  "whatever",
			"product_id": "whatever",
			"kind":       "treatment",
			"date":       time.Now().UTC().Format(time.RFC3339),
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 create treatment without scope, got %d", st)
		}
	}

	// 6) Owner revoca; el delegado pierde acceso inmediatamente
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/revoke", ownerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke grant, got %d body=%s", st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/farms/"+farmID+"/actions", delegateID, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 actions after revoke, got %d", st)
		}
	}
}

type actionsFeed struct {
	Summary struct {
		Urgent        int `json:"urgent"`
		ThisWeek      int `json:"this_week"`
		Planned       int `json:"planned"`
		Opportunities int `json:"opportunities"`
	} `json:"summary"`
	Actions []struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		Priority string `json:"priority"`
		Category string `json:"category"`
	} `json:"actions"`
}

func createFarm(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()
	return createJSON(t, baseURL, userID, "/farms", payload)
}

// createJSON hace un POST que debe devolver 201 con un campo id.
func createJSON(t *testing.T, baseURL, userID, path string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 POST %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("POST %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
