// Cinegraph - Multilingual Semantic Movie Search
// Copyright 2026 Cinegraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinegraph/cinegraph

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with user-friendly error messages. It integrates
// with the application's API error format for consistent error responses.
//
// # Quick Start
//
//	type TextSearchRequest struct {
//	    Text     string `validate:"required,min=2,max=500"`
//	    Language string `validate:"omitempty,oneof=en es fr de"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req TextSearchRequest
//	    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - url: Valid URL format
//
// Numeric validations:
//   - gte=n / lte=n / gt=n / lt=n
//   - min=n / max=n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// # API Error Integration
//
// The ToAPIError method produces errors matching the application format:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Text is required",
//	    "details": {"field": "Text", "tag": "required", "value": ""}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Text: is required; Language: must be one of: en es fr de",
//	    "details": {
//	        "fields": [
//	            {"field": "Text", "tag": "required", "message": "..."},
//	            {"field": "Language", "tag": "oneof", "message": "..."}
//	        ]
//	    }
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use.
// It caches struct reflection information, so repeat validations of the
// same request type are cheap.
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
