package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ga4gh/anyvar/internal/anyvar"
	"github.com/ga4gh/anyvar/internal/asyncjob"
	"github.com/ga4gh/anyvar/internal/broker/memorybroker"
	"github.com/ga4gh/anyvar/internal/dataproxy"
	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/translate"
	"github.com/ga4gh/anyvar/internal/vcfingest"
)

func newTestServer(t *testing.T) *Server {
	proxy := dataproxy.NewLocalProxy()
	proxy.AddAlias("NC_000010.11", "SQ.ss8r_wB0-b9r44TQTMmVTI92884QvBiB")
	proxy.AddAlias("12", "SQ.6wlJpONE3oNb4D69ULmEXhqyDZ4vwNfl")
	tr := translate.NewNormalizingTranslator(proxy)
	store := storage.NewMemStore()
	av := anyvar.New(tr, proxy, store)

	pipeline := vcfingest.New(av, proxy, tr)

	workDir := t.TempDir()
	b := memorybroker.New(8)
	results := memorybroker.NewResultStore()
	queue := asyncjob.New(b, results, 0)

	workerCtx, cancel := context.WithCancel(context.Background())
	go queue.RunWorker(workerCtx, BuildProcess(pipeline, 2))
	t.Cleanup(func() {
		cancel()
		b.Close()
	})

	vh := NewVCFHandler(pipeline, queue, workDir, 2)
	return New(av, queue, vh, 0)
}

func TestRouter_PutAndGetVariation_RoundTrips(t *testing.T) {
	s := newTestServer(t)

	body := `{"definition":"NC_000010.11:g.87894077C>T"}`
	req := httptest.NewRequest(http.MethodPut, "/variation", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /variation: got %d, body %s", rec.Code, rec.Body.String())
	}
	var putResp struct {
		ObjectID string `json:"object_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &putResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if putResp.ObjectID == "" {
		t.Fatal("expected non-empty object_id")
	}

	getReq := httptest.NewRequest(http.MethodGet, "/variation/"+putResp.ObjectID, nil)
	getRec := httptest.NewRecorder()
	s.Engine.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET /variation/:id: got %d, body %s", getRec.Code, getRec.Body.String())
	}
}

func TestRouter_GetVariation_UnknownIDReturns404(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/variation/ga4gh:VA.doesnotexist", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestRouter_PutVariation_BadDefinitionReturns400(t *testing.T) {
	s := newTestServer(t)

	body := `{"definition":"not a real variant definition"}`
	req := httptest.NewRequest(http.MethodPut, "/variation", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400, body %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_Search_RejectsBackwardsRange(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/search?accession=SQ.x&start=100&end=10", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestRouter_MappingsAndAnnotations_RoundTrip(t *testing.T) {
	s := newTestServer(t)

	putBody := `{"definition":"NC_000010.11:g.87894077C>T"}`
	putReq := httptest.NewRequest(http.MethodPut, "/variation", bytes.NewBufferString(putBody))
	putRec := httptest.NewRecorder()
	s.Engine.ServeHTTP(putRec, putReq)
	var putResp struct {
		ObjectID string `json:"object_id"`
	}
	json.Unmarshal(putRec.Body.Bytes(), &putResp)

	mapBody := `{"dest_id":"ga4gh:VA.other","mapping_type":"liftover"}`
	mapReq := httptest.NewRequest(http.MethodPut, "/variation/"+putResp.ObjectID+"/mappings", bytes.NewBufferString(mapBody))
	mapRec := httptest.NewRecorder()
	s.Engine.ServeHTTP(mapRec, mapReq)
	if mapRec.Code != http.StatusOK {
		t.Fatalf("PUT mappings: got %d, body %s", mapRec.Code, mapRec.Body.String())
	}

	getMapReq := httptest.NewRequest(http.MethodGet, "/variation/"+putResp.ObjectID+"/mappings/liftover", nil)
	getMapRec := httptest.NewRecorder()
	s.Engine.ServeHTTP(getMapRec, getMapReq)
	if getMapRec.Code != http.StatusOK {
		t.Fatalf("GET mappings: got %d", getMapRec.Code)
	}

	annBody := `{"annotation_type":"clinical_significance","annotation_value":{"classification":"pathogenic"}}`
	annReq := httptest.NewRequest(http.MethodPost, "/variation/"+putResp.ObjectID+"/annotations", bytes.NewBufferString(annBody))
	annRec := httptest.NewRecorder()
	s.Engine.ServeHTTP(annRec, annReq)
	if annRec.Code != http.StatusOK {
		t.Fatalf("POST annotations: got %d, body %s", annRec.Code, annRec.Body.String())
	}

	getAnnReq := httptest.NewRequest(http.MethodGet, "/variation/"+putResp.ObjectID+"/annotations/clinical_significance", nil)
	getAnnRec := httptest.NewRecorder()
	s.Engine.ServeHTTP(getAnnRec, getAnnReq)
	if getAnnRec.Code != http.StatusOK {
		t.Fatalf("GET annotations: got %d", getAnnRec.Code)
	}
}

func TestRouter_ServiceInfo(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/service-info", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestRouter_PutVCF_Sync_ReturnsAnnotatedFile(t *testing.T) {
	s := newTestServer(t)

	vcfContent := readFixture(t, "kras_g12c.vcf")
	req := httptest.NewRequest(http.MethodPut, "/vcf", bytes.NewBuffer(vcfContent))
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /vcf: got %d, body %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("VRS_Allele_IDs")) {
		t.Error("expected VRS_Allele_IDs INFO declaration in response body")
	}
}

func TestRouter_PutVCF_Async_AcceptsAndCompletes(t *testing.T) {
	s := newTestServer(t)

	vcfContent := readFixture(t, "kras_g12c.vcf")
	req := httptest.NewRequest(http.MethodPut, "/vcf?enable_async=true", bytes.NewBuffer(vcfContent))
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("PUT /vcf?enable_async=true: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RunID == "" {
		t.Fatal("expected non-empty run_id")
	}

	pollAndWait(t, s, resp.RunID)
}

func pollAndWait(t *testing.T, s *Server, runID string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/vcf/"+runID, nil)
		rec := httptest.NewRecorder()
		s.Engine.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			return
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("GET /vcf/%s: got unexpected %d, body %s", runID, rec.Code, rec.Body.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("run %s never completed", runID)
}

func TestRouter_GetVCF_UnknownRunReturns404(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/vcf/never-submitted", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "vcf", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}
