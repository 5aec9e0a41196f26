package aggregate

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/roles"
	catalogerrors "github.com/mantonx/reelbase/internal/modules/catalogmodule/errors"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

// ReconcileResult counts the role tags written by one reconciliation.
type ReconcileResult struct {
	Added   map[types.RoleType]int64 `json:"added"`
	Removed map[types.RoleType]int64 `json:"removed"`
}

// Total returns the number of added and removed tags.
func (r ReconcileResult) Total() (added, removed int64) {
	for _, n := range r.Added {
		added += n
	}
	for _, n := range r.Removed {
		removed += n
	}
	return added, removed
}

// Reconciler brings person role tags in line with movie credits. Tags are
// added when a person is credited; they are not removed when the credit
// goes away unless pruning is requested. Tag-only roles are never pruned.
type Reconciler struct {
	tm     *databasemodule.TransactionManager
	logger hclog.Logger
}

func NewReconciler(tm *databasemodule.TransactionManager) *Reconciler {
	return &Reconciler{tm: tm, logger: logger.Named("reconcile")}
}

// Reconcile adds every missing tag and, with prune set, removes tags of
// credited roles that no longer have a credit behind them.
func (r *Reconciler) Reconcile(ctx context.Context, prune bool) (ReconcileResult, error) {
	const op = "reconcile_roles"

	result := ReconcileResult{
		Added:   make(map[types.RoleType]int64),
		Removed: make(map[types.RoleType]int64),
	}

	err := r.tm.WithTransaction(ctx, func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		for _, d := range roles.Descriptors() {
			if !d.HasCredits() {
				continue
			}

			insert := fmt.Sprintf(
				"INSERT INTO person_role_types (person_id, role_type) "+
					"SELECT DISTINCT cr.person_id, ? FROM %s cr "+
					"WHERE NOT EXISTS (SELECT 1 FROM person_role_types rt WHERE rt.person_id = cr.person_id AND rt.role_type = ?)",
				d.CreditTable)
			res := tx.Exec(insert, string(d.Tag), string(d.Tag))
			if res.Error != nil {
				return catalogerrors.DatabaseError(op, res.Error).WithDetail("role", string(d.Role))
			}
			if res.RowsAffected > 0 {
				result.Added[d.Tag] = res.RowsAffected
			}

			if !prune {
				continue
			}
			remove := fmt.Sprintf(
				"DELETE FROM person_role_types WHERE role_type = ? "+
					"AND NOT EXISTS (SELECT 1 FROM %s cr WHERE cr.person_id = person_role_types.person_id)",
				d.CreditTable)
			res = tx.Exec(remove, string(d.Tag))
			if res.Error != nil {
				return catalogerrors.DatabaseError(op, res.Error).WithDetail("role", string(d.Role))
			}
			if res.RowsAffected > 0 {
				result.Removed[d.Tag] = res.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	added, removed := result.Total()
	r.logger.Info("role tags reconciled", "added", added, "removed", removed, "prune", prune)
	return result, nil
}
