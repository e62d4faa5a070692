// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package models

// AgeVerificationRequest is the body of POST /api/v1/session/age.
type AgeVerificationRequest struct {
	Aadhaar string `json:"aadhaar" validate:"required,aadhaar"`
}

// CredentialsRequest is the body of the register and login endpoints.
// The 72 byte cap is bcrypt's input limit.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RecommendationQuery holds the query string of GET /api/v1/recommendations.
type RecommendationQuery struct {
	Title string `json:"title" validate:"required,max=500"`
	K     int    `json:"k" validate:"gte=1"`
}

// MovieListQuery holds the query string of GET /api/v1/movies.
type MovieListQuery struct {
	Q      string `json:"q" validate:"max=200"`
	Limit  int    `json:"limit" validate:"min=1,max=500"`
	Offset int    `json:"offset" validate:"gte=0"`
}
