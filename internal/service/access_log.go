// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"

	"github.com/mileusna/useragent"

	"github.com/olegiv/festivo-go/internal/activity"
	"github.com/olegiv/festivo-go/internal/geoip"
	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

// Page size limits for log listings.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// AccessLogService records who unlocked a festival and from what client.
type AccessLogService struct {
	deps
	geo *geoip.Lookup
}

// ParsedUA holds the fields extracted from a user agent string.
type ParsedUA struct {
	Browser    string
	OS         string
	DeviceType string
}

// ParseUserAgent extracts browser, OS and device type from a user agent string.
func ParseUserAgent(uaString string) ParsedUA {
	ua := useragent.Parse(uaString)

	result := ParsedUA{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if result.Browser == "" {
		result.Browser = "Unknown"
	}
	if result.OS == "" {
		result.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		result.DeviceType = "mobile"
	case ua.Tablet:
		result.DeviceType = "tablet"
	case ua.Bot:
		result.DeviceType = "bot"
	default:
		result.DeviceType = "desktop"
	}
	return result
}

// Record logs a successful unlock of f. The visitor name is kept only when f
// tracks visitors; open festivals never attribute visits. Admin and super
// admin unlocks also append a login entry to the activity log.
func (s *AccessLogService) Record(ctx context.Context, f *model.Festival, sess session.Session, userAgent, ip string) error {
	ua := ParseUserAgent(userAgent)
	entry := model.AccessLog{
		FestivalID:  f.ID,
		SessionRole: string(sess.Role),
		AdminID:     sess.ActorID(),
		Browser:     ua.Browser,
		OS:          ua.OS,
		DeviceType:  ua.DeviceType,
		AccessedAt:  s.timestamp(),
	}
	if sess.Role == session.RoleVisitor && f.TracksVisitors() && sess.VisitorName != "" {
		name := sess.VisitorName
		entry.VisitorName = &name
	}
	if s.geo != nil {
		entry.CountryCode = s.geo.LookupCountry(ip)
	}

	if _, err := s.store.CreateAccessLog(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("access log write failed", "category", model.EventCategoryAuth,
			"festival_id", f.ID, "error", err)
		return err
	}

	if sess.Role != session.RoleVisitor {
		s.emitter.Emit(ctx, activity.Entry{
			FestivalID: f.ID,
			AdminID:    sess.ActorID(),
			ActionType: model.ActionLogin,
			Details: map[string]any{
				"session_role": string(sess.Role),
				"browser":      ua.Browser,
				"device_type":  ua.DeviceType,
			},
		})
	}
	return nil
}

// List returns a page of access logs of f, newest first.
func (s *AccessLogService) List(ctx context.Context, f *model.Festival, limit, offset int) ([]model.AccessLog, error) {
	limit, offset = pageBounds(limit, offset)
	return s.store.ListAccessLogs(ctx, f.ID, limit, offset)
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
