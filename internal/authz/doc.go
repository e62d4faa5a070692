// Reelmatch - Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package authz decides which session states may call which API routes,
// using Casbin RBAC with keyMatch2 path patterns.
//
// Subjects are session states plus "operator". The embedded policy makes the
// states a ladder, so a registered session can do anything an age-verified or
// unverified one can:
//
//	g, registered, age_verified
//	g, age_verified, unverified
//
// Actions are HTTP methods. HEAD is checked as GET.
//
//	enforcer, err := authz.NewEnforcer(nil)
//	if err != nil {
//	    return err
//	}
//	defer enforcer.Close()
//
//	ok, err := enforcer.Allow("registered", "/api/v1/recommendations", http.MethodGet)
//
// A policy file can replace the embedded one through EnforcerConfig.PolicyPath.
package authz
