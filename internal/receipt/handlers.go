package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hsatools/receipt-parse/internal/scanning"
)

// maxUploadSize caps multipart uploads at 50MB to handle high-resolution
// phone photos
const maxUploadSize = int64(50 << 20)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// statusForError maps the error taxonomy onto HTTP status codes: conversion
// failures are the client's fault, upstream statuses are proxied through,
// everything else is a server fault.
func statusForError(err error) int {
	var convErr *scanning.ConversionError
	if errors.As(err, &convErr) {
		return http.StatusBadRequest
	}
	var upErr *scanning.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusCode
	}
	return http.StatusInternalServerError
}

// handleParseReceipt accepts a single file upload and returns the extracted
// ReceiptRecord
func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	// The declared type may be missing or wrong; the filename extension
	// takes precedence during normalization
	contentType := header.Header.Get("Content-Type")

	record, err := s.service.ParseReceipt(header.Filename, data, contentType)
	if err != nil {
		slog.Error("Error parsing receipt", "filename", header.Filename, "error", err)
		jsonError(w, err.Error(), statusForError(err))
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleHealth reports the active extraction strategy and model
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":     "healthy",
		"ocr_method": s.service.Method(),
		"model":      s.service.Model(),
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
