// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/festivo-go/internal/access"
	"github.com/olegiv/festivo-go/internal/middleware"
	"github.com/olegiv/festivo-go/internal/transfer"
)

// Route patterns.
const (
	RouteFestivals = "/api/festivals"
	RouteFestival  = RouteFestivals + "/{" + middleware.URLParamCode + "}"
	RouteLogin     = RouteFestival + "/login"
)

// Routes mounts the festival API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post(RouteFestivals, h.CreateFestival)

	r.Route(RouteFestival, func(r chi.Router) {
		r.Use(middleware.LoadFestival(h.svc.Festivals, h.svc.Admins, h.sessions))

		r.Get("/", h.ShowFestival)
		r.With(h.login.Middleware()).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(access.CapManage, h.svc.Events))

			transactionRoutes(r, "/collections", h.Transactions(transfer.KindCollection))
			transactionRoutes(r, "/expenses", h.Transactions(transfer.KindExpense))

			r.Get("/references/{kind}", h.ListReferences)
			r.Post("/references/{kind}", h.CreateReference)
			r.Delete("/references/{kind}/{id}", h.DeleteReference)

			r.Get("/user-passwords", h.ListUserPasswords)
			r.Post("/user-passwords", h.CreateUserPassword)
			r.Patch("/user-passwords/{id}", h.UpdateUserPassword)
			r.Delete("/user-passwords/{id}", h.DeleteUserPassword)

			// The service lets admins change their own password.
			r.Put("/admins/{id}/password", h.ChangeAdminPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(access.CapSuperAdmin, h.svc.Events))

			r.Get("/admins", h.ListAdmins)
			r.Post("/admins", h.CreateAdmin)
			r.Patch("/admins/{id}", h.UpdateAdmin)
			r.Delete("/admins/{id}", h.DeleteAdmin)

			r.Put("/code", h.ChangeCode)
			r.Get("/aliases", h.ListAliases)
			r.Delete("/aliases/{alias}", h.InvalidateAlias)
			r.Put("/dates", h.UpdateDates)
			r.Put("/visitor-gate", h.SetVisitorGate)
			r.Get("/activity", h.ListActivity)
			r.Get("/access-logs", h.ListAccessLogs)
		})
	})
}

func transactionRoutes(r chi.Router, prefix string, t *Transactions) {
	r.Get(prefix, t.List)
	r.Post(prefix, t.Create)
	r.Post(prefix+"/import", t.Import)
	r.Get(prefix+"/export", t.Export)
	r.Delete(prefix+"/{id}", t.Delete)
}
