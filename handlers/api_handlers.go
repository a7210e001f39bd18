package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"defaulter-server-go/classifier"
	"defaulter-server-go/config"
	"defaulter-server-go/dataset"
	"defaulter-server-go/graphs"
	"defaulter-server-go/models"
	"defaulter-server-go/notify"
	"defaulter-server-go/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

var (
	allowedExtensions = map[string]bool{"xlsx": true, "xls": true, "csv": true}
	unsafeFileRunes   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// APIHandler holds the dependencies for API handlers: the artifact store,
// the email dispatcher, the graph renderer and the runtime configuration.
type APIHandler struct {
	Store      store.ArtifactStore
	Dispatcher *notify.Dispatcher
	Renderer   graphs.Renderer
	Cfg        *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(st store.ArtifactStore, dispatcher *notify.Dispatcher, cfg *config.Config) *APIHandler {
	return &APIHandler{
		Store:      st,
		Dispatcher: dispatcher,
		Cfg:        cfg,
	}
}

// HealthCheck handles GET /
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"message": "Student Defaulter Classification System API",
	})
}

// --- Upload / Classification ---

// sanitizeFilename strips path components and unsafe runes from a
// client-supplied filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return unsafeFileRunes.ReplaceAllString(name, "_")
}

// Upload handles POST /upload: saves the uploaded table, classifies it
// against the threshold and stores the annotated results artifact.
func (h *APIHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	teacherName := strings.TrimSpace(c.PostForm("teacher_name"))
	teacherEmail := strings.TrimSpace(c.PostForm("teacher_email"))
	if teacherName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Teacher name cannot be empty"})
		return
	}
	if teacherEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Teacher email cannot be empty"})
		return
	}

	threshold := h.Cfg.DefaultThreshold
	if raw := c.PostForm("threshold"); raw != "" {
		threshold, err = strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid threshold value: %v", err)})
			return
		}
	}

	filename := sanitizeFilename(header.Filename)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if filename == "" || !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only .xlsx, .xls, and .csv files are allowed"})
		return
	}

	// Enforce the upload size cap before anything touches disk.
	if header.Size > h.Cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large. Maximum size is 16MB"})
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	uploadName := timestamp + "_" + filename
	uploadPath := filepath.Join(h.Cfg.UploadDir, uploadName)

	if err := saveUpload(file, uploadPath); err != nil {
		log.Printf("Error saving upload %s: %v", uploadName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return
	}
	log.Printf("Received file upload: %s from teacher %s", uploadName, teacherName)

	ds, err := dataset.ParseFile(uploadPath)
	if err != nil {
		// The upload is useless if it cannot be parsed; remove it.
		removeUpload(uploadPath)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classified, summary, err := classifier.Classify(ds, threshold)
	if err != nil {
		removeUpload(uploadPath)
		var schemaErr *classifier.SchemaError
		var valueErr *classifier.ValueError
		if errors.As(err, &schemaErr) || errors.As(err, &valueErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error classifying upload %s: %v", uploadName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return
	}

	resultsFile := "results_" + timestamp + ".xlsx"
	if err := h.Store.SaveDataset(resultsFile, classified); err != nil {
		log.Printf("Error storing results %s: %v", resultsFile, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File processed successfully",
		"results": gin.H{
			"total_students":      summary.TotalStudents,
			"defaulter_count":     summary.DefaulterCount,
			"non_defaulter_count": summary.NonDefaulterCount,
			"threshold":           summary.Threshold,
			"results_file":        resultsFile,
		},
		"data": classified.Records(),
	})
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write upload file: %w", err)
	}
	return nil
}

func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Error removing upload %s: %v", path, err)
	}
}

// --- Downloads ---

// DownloadResults handles GET /download/:filename
func (h *APIHandler) DownloadResults(c *gin.Context) {
	filename := c.Param("filename")
	if !strings.HasPrefix(filename, "results_") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid file access"})
		return
	}

	data, err := h.Store.Get(filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		log.Printf("Error reading results file %s: %v", filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error downloading file: %v", err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DownloadGraph handles GET /download-graph/:filename
func (h *APIHandler) DownloadGraph(c *gin.Context) {
	filename := c.Param("filename")
	if !strings.HasSuffix(filename, ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return
	}

	data, err := h.Store.Get(filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Graph file not found"})
			return
		}
		log.Printf("Error reading graph file %s: %v", filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Error downloading graph: %v", err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, pdfContentType, data)
}

// --- Email / Graphs ---

// loadResults fetches a stored results dataset, translating a missing
// artifact into a client-facing 404. Returns nil when a response was written.
func (h *APIHandler) loadResults(c *gin.Context, name string) *dataset.Dataset {
	exists, err := h.Store.Exists(name)
	if err != nil {
		log.Printf("Error checking results file %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return nil
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Results file not found"})
		return nil
	}

	ds, err := h.Store.LoadDataset(name)
	if err != nil {
		log.Printf("Error loading results file %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return nil
	}
	return ds
}

// renderAndStoreGraphs renders the report PDF and persists it as an
// artifact, returning the PDF bytes and artifact name.
func (h *APIHandler) renderAndStoreGraphs(ds *dataset.Dataset, info models.ClassInfo) ([]byte, string, error) {
	pdfBytes, graphName, err := h.Renderer.Render(ds, info)
	if err != nil {
		return nil, "", err
	}
	if err := h.Store.Put(graphName, pdfBytes); err != nil {
		return nil, "", err
	}
	return pdfBytes, graphName, nil
}

// SendEmailReport handles POST /send-email: regenerates the graph document
// and emails the teacher their summary with both artifacts attached.
func (h *APIHandler) SendEmailReport(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required data"})
		return
	}

	ds := h.loadResults(c, req.ResultsFile)
	if ds == nil {
		return
	}

	info := models.ClassInfo{
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		Threshold:   req.Results.Threshold,
	}
	pdfBytes, graphName, err := h.renderAndStoreGraphs(ds, info)
	if err != nil {
		log.Printf("Error generating graphs for %s: %v", req.ResultsFile, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return
	}

	report, err := h.Store.Get(req.ResultsFile)
	if err != nil {
		log.Printf("Error reading results file %s: %v", req.ResultsFile, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return
	}

	summary := notify.TeacherSummary{
		TeacherName:  req.TeacherName,
		TeacherEmail: req.TeacherEmail,
		Details: models.TeacherDetails{
			Designation: req.TeacherDesignation,
			ClassName:   req.ClassName,
			Department:  req.Department,
			CollegeName: req.CollegeName,
		},
		Summary:    req.Results,
		ReportName: req.ResultsFile,
		Report:     report,
		GraphName:  graphName,
		Graph:      pdfBytes,
	}
	if err := h.Dispatcher.SendTeacherSummary(c.Request.Context(), summary); err != nil {
		log.Printf("Error sending teacher report to %s: %v", req.TeacherEmail, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to send email: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Email sent successfully",
		"graph_path": graphName,
	})
}

// SendStudentEmail handles POST /send-student-email: warns every defaulting
// student by email. Per-recipient failures are reported, not escalated.
func (h *APIHandler) SendStudentEmail(c *gin.Context) {
	var req models.SendStudentEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required data"})
		return
	}

	ds := h.loadResults(c, req.ResultsFile)
	if ds == nil {
		return
	}

	recipients := notify.DefaulterRecipients(ds)
	if len(recipients) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No defaulter students found"})
		return
	}

	threshold := h.Cfg.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result := h.Dispatcher.SendStudentWarnings(c.Request.Context(), recipients, threshold)

	var failed []string
	for _, f := range result.Failures {
		failed = append(failed, f.Error())
	}
	resp := gin.H{
		"message": fmt.Sprintf("Sent %d emails successfully, %d failed", result.SentCount, len(result.Failures)),
	}
	if len(failed) > 0 {
		resp["failed_emails"] = failed
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateGraphs handles POST /generate-graphs: renders the report document
// without sending any email.
func (h *APIHandler) GenerateGraphs(c *gin.Context) {
	var req models.GenerateGraphsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required data"})
		return
	}

	ds := h.loadResults(c, req.ResultsFile)
	if ds == nil {
		return
	}

	info := models.ClassInfo{
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		Threshold:   req.Threshold,
	}
	_, graphName, err := h.renderAndStoreGraphs(ds, info)
	if err != nil {
		var missingErr *graphs.MissingColumnError
		if errors.As(err, &missingErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error generating graphs for %s: %v", req.ResultsFile, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An error occurred: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Graphs generated successfully",
		"graph_path": graphName,
	})
}
