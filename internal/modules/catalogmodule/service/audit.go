package service

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
)

// AuditObserver logs every committed change to entities of one type.
func AuditObserver(log hclog.Logger, entity types.EntityType) types.Observer {
	log = log.Named("audit")
	return func(_ context.Context, action types.Action, id string) {
		log.Info("catalog change", "entity", entity, "action", action, "id", id)
	}
}
