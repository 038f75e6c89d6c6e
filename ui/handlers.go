package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wordmetrics/adapters/excel"
	"wordmetrics/app"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal/config"
	"wordmetrics/internal/errors"
	"wordmetrics/internal/report"
	"wordmetrics/ports"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleProcess runs one transform over the uploaded file and answers with
// a JSON preview, an HTML report or a CSV/XLSX download.
func (s *Server) handleProcess(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.uploadError(c, err)
		return
	}
	defer file.Close()

	cfg, err := s.requestConfig(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	format := strings.ToLower(c.DefaultPostForm("format", "json"))
	var writer ports.TableWriter
	switch format {
	case "json", "html":
	default:
		if writer, err = excel.WriterFor(format); err != nil {
			s.respondError(c, err)
			return
		}
	}

	result, err := s.service.Process(c.Request.Context(), app.ProcessRequest{
		Filename: header.Filename,
		Data:     file,
		Config:   cfg,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	preview := s.config.Server.PreviewRows
	switch {
	case writer != nil:
		var buf bytes.Buffer
		if err := app.Export(&buf, writer, result); err != nil {
			s.respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, excel.ExportFileName(writer)))
		c.Data(http.StatusOK, writer.ContentType(), buf.Bytes())
	case format == "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(result, preview))
	default:
		c.JSON(http.StatusOK, previewResult(result, preview))
	}
}

func (s *Server) handleColumns(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.uploadError(c, err)
		return
	}
	defer file.Close()

	fields, err := s.service.Columns(c.Request.Context(), header.Filename, file)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": header.Filename, "columns": fields})
}

// requestConfig reads column roles and options from the form, falling back
// to the server's transform defaults.
func (s *Server) requestConfig(c *gin.Context) (dm.Config, error) {
	job := config.Job{
		IDColumn:          strings.TrimSpace(c.PostForm("id_column")),
		TextColumn:        strings.TrimSpace(c.PostForm("text_column")),
		ClassifierColumns: c.PostFormArray("classifier_columns"),
		Mode:              c.PostForm("mode"),
		TermsNaming:       c.PostForm("terms_naming"),
	}
	if raw := strings.TrimSpace(c.PostForm("percent_precision")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return dm.Config{}, errors.InvalidInput(fmt.Sprintf("percent_precision %q is not an integer", raw))
		}
		job.PercentPrecision = &p
	}
	return job.MetricsConfig(s.config.Transform)
}

// previewResult trims the result table to the preview size. OutputRows
// still reports the full row count.
func previewResult(result *dm.Result, n int) *dm.Result {
	preview := *result
	preview.Table = result.Table.Head(n)
	return &preview
}

func (s *Server) uploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds the %d MB limit", s.config.Server.MaxUploadMB),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
