// Copyright 2021-present ZenBPM Contributors
// (based on git commit history).
//
// ZenBPM project is available under two licenses:
//  - SPDX-License-Identifier: AGPL-3.0-or-later (See LICENSE-AGPL.md)
//  - Enterprise License (See LICENSE-ENTERPRISE.md)

// Package profile selects the deployment profile from the PROFILE environment variable.
// Outside PROD the server also logs every engine event.
package profile

import (
	"fmt"
	"os"
	"strings"
)

type ProfileType string

var Current = DEV

const (
	DEV  ProfileType = "DEV"
	TEST ProfileType = "TEST"
	PROD ProfileType = "PROD"
)

func InitProfile() {
	Current = parse(os.Getenv("PROFILE"), Current)
	fmt.Fprintf(os.Stderr, "Current profile: %s\n", Current)
}

func parse(value string, fallback ProfileType) ProfileType {
	switch p := ProfileType(strings.ToUpper(strings.TrimSpace(value))); p {
	case DEV, TEST, PROD:
		return p
	}
	return fallback
}
