package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/asyncjob"
	"github.com/ga4gh/anyvar/internal/broker"
	"github.com/ga4gh/anyvar/internal/vcf"
	"github.com/ga4gh/anyvar/internal/vcfingest"
)

// VCFHandler serves PUT/GET /vcf, owning the shared working directory
// async runs read and write files under and the default HTTP status for
// a FAILED run (spec.md §6.3's http.failed_run_status_code).
type VCFHandler struct {
	pipeline            *vcfingest.Pipeline
	queue               *asyncjob.Queue
	workDir             string
	workers             int
	failedRunStatusCode int
	logger              *zap.Logger
}

// NewVCFHandler wires a vcfingest.Pipeline for synchronous requests and
// an asyncjob.Queue for enable_async=true requests. queue may be nil if
// the deployment doesn't support async ingest; such a deployment 400s
// any enable_async=true request.
func NewVCFHandler(pipeline *vcfingest.Pipeline, queue *asyncjob.Queue, workDir string, workers int) *VCFHandler {
	return &VCFHandler{
		pipeline: pipeline,
		queue:    queue,
		workDir:  workDir,
		workers:  workers,
		logger:   zap.NewNop(),
	}
}

var errAsyncUnsupported = errors.New("vcf: async ingest is not configured on this deployment")

func (h *VCFHandler) failedRunStatusCodeOrDefault() {
	if h.failedRunStatusCode == 0 {
		h.failedRunStatusCode = http.StatusInternalServerError
	}
}

// putVCF registers every record in an uploaded VCF. With
// enable_async=true it persists the upload, enqueues a task, and
// returns 202 immediately; otherwise it runs the pipeline inline and
// streams the annotated VCF back as the response body.
// PUT /vcf
func (h *VCFHandler) putVCF(c *gin.Context) {
	enableAsync := c.Query("enable_async") == "true"
	runID := c.Query("run_id")

	inputPath, err := h.saveUpload(c, runID)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if enableAsync {
		h.submitAsync(c, runID, inputPath)
		return
	}
	h.runSync(c, inputPath)
}

func (h *VCFHandler) saveUpload(c *gin.Context, runID string) (string, error) {
	if runID == "" {
		runID = "sync-" + strconv.FormatInt(int64(os.Getpid()), 10)
	}
	dir := filepath.Join(h.workDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	inputPath := filepath.Join(dir, "input.vcf")

	f, err := os.Create(inputPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.ReadFrom(c.Request.Body); err != nil {
		return "", err
	}
	return inputPath, nil
}

func (h *VCFHandler) submitAsync(c *gin.Context, runID, inputPath string) {
	if h.queue == nil {
		writeError(c, http.StatusBadRequest, errAsyncUnsupported)
		return
	}

	outputPath := filepath.Join(filepath.Dir(inputPath), "output.vcf")
	run, err := h.queue.Submit(c.Request.Context(), runID, inputPath, outputPath)
	if err != nil {
		if errors.Is(err, anyvarerr.ErrRunIDConflict) {
			writeError(c, http.StatusConflict, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Location", "/vcf/"+run.RunID)
	c.Header("Retry-After", "5")
	c.JSON(http.StatusAccepted, gin.H{
		"run_id":         run.RunID,
		"status_message": string(run.Status),
	})
}

func (h *VCFHandler) runSync(c *gin.Context, inputPath string) {
	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	defer parser.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/plain")
	w := vcfingest.NewWriter(c.Writer)
	if err := h.pipeline.Run(c.Request.Context(), parser, w, h.workers); err != nil {
		h.logger.Error("sync vcf ingest failed", zap.Error(err))
		// Headers are already flushed with 200; surface the failure by
		// aborting the connection rather than writing a second status.
		c.Abort()
	}
}

// getVCF polls an async run's status, returning the annotated VCF on
// completion.
// GET /vcf/:run_id
func (h *VCFHandler) getVCF(c *gin.Context) {
	if h.queue == nil {
		writeError(c, http.StatusNotFound, anyvarerr.ErrRunUnknown)
		return
	}

	run, err := h.queue.Poll(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		if errors.Is(err, anyvarerr.ErrRunUnknown) {
			writeError(c, http.StatusNotFound, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}

	switch run.Status {
	case asyncjob.Pending, asyncjob.Running:
		c.Header("Retry-After", "5")
		c.JSON(http.StatusAccepted, gin.H{"run_id": run.RunID, "status_message": string(run.Status)})
	case asyncjob.Completed:
		c.File(run.OutputPath)
	case asyncjob.Failed:
		c.JSON(h.failedRunStatusCode, gin.H{
			"run_id": run.RunID,
			"error":  run.ErrorMessage,
			"status": string(run.Status),
		})
	default:
		writeError(c, http.StatusNotFound, anyvarerr.ErrRunUnknown)
	}
}

func BuildProcess(pipeline *vcfingest.Pipeline, workers int) asyncjob.Process {
	return func(ctx context.Context, task broker.Task) error {
		parser, err := vcf.NewParser(task.InputPath)
		if err != nil {
			return err
		}
		defer parser.Close()

		tmpPath := task.OutputPath + ".tmp"
		out, err := os.Create(tmpPath)
		if err != nil {
			return err
		}

		w := vcfingest.NewWriter(out)
		if err := pipeline.Run(ctx, parser, w, workers); err != nil {
			out.Close()
			os.Remove(tmpPath)
			return err
		}
		if err := out.Close(); err != nil {
			os.Remove(tmpPath)
			return err
		}
		return os.Rename(tmpPath, task.OutputPath)
	}
}
