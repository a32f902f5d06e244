// common.go
//
// A video hosting service for users, videos, comments, tags and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of videohost.
// videohost is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// videohost is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with videohost.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/videohost/internal/messaging"
	"github.com/localnerve/videohost/internal/metrics"
	"github.com/localnerve/videohost/internal/middleware"
	"github.com/localnerve/videohost/internal/services"
	"github.com/localnerve/videohost/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// queryUint reads an optional unsigned query parameter. Absent or empty is 0.
func queryUint(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, types.BadRequest("Query parameter '" + key + "' must be a non-negative integer.")
	}
	return uint(n), nil
}

// requiredID reads a query id that must be present and positive
func requiredID(c *fiber.Ctx, key string) (uint, error) {
	id, err := queryUint(c, key)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, types.BadRequest("Query parameter '" + key + "' is required.")
	}
	return id, nil
}

// queryInt reads an optional signed query parameter with a default
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.BadRequest("Query parameter '" + key + "' must be an integer.")
	}
	return n, nil
}

// queryPage reads skip and take
func queryPage(c *fiber.Ctx, defaultTake int) (services.Page, error) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return services.Page{}, err
	}
	take, err := queryInt(c, "take", defaultTake)
	if err != nil {
		return services.Page{}, err
	}
	return services.NewPage(skip, take)
}

// parseBody decodes a JSON body, answering BadRequest on malformed input
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return types.BadRequest("Invalid request body.", err.Error())
	}
	return nil
}

// requirePositive rejects a missing body id
func requirePositive(id types.FlexID, field string) error {
	if id == 0 {
		return types.BadRequest("Field '" + field + "' is required.")
	}
	return nil
}

func flexIDs(list types.FlexList[types.FlexID]) []uint {
	out := make([]uint, 0, len(list))
	for _, id := range list {
		out = append(out, id.Uint())
	}
	return out
}

// callerID is the authenticated user id
func callerID(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, types.Unauthorized("Bearer token required.")
	}
	return id, nil
}

// requireOwnerOrAdmin lets the owner through, or a caller whose stored role is Admin
func requireOwnerOrAdmin(c *fiber.Ctx, db *gorm.DB, ownerID uint) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}
	if caller == ownerID {
		return nil
	}
	user, err := services.FindUser(c.UserContext(), db, caller)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	if user == nil || !user.IsAdmin() {
		return types.Forbidden("You do not have permission to modify this resource.")
	}
	return nil
}

// requestLog tags a logger with the request id
func requestLog(c *fiber.Ctx, log logrus.FieldLogger) logrus.FieldLogger {
	return log.WithField("requestId", c.GetRespHeader(fiber.HeaderXRequestID))
}

// publish sends a domain event. Failures are logged and counted, never returned.
func publish(ctx context.Context, events messaging.Publisher, log logrus.FieldLogger, eventType, key string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(context.WithoutCancel(ctx), eventType, key, payload); err != nil {
		metrics.EventPublishFailures.WithLabelValues(eventType).Inc()
		log.WithError(err).WithField("event", eventType).Warn("Failed to publish event")
	}
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
