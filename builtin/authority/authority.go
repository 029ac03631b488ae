// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"math/big"

	"github.com/vechain/tokendist/builtin/reverts"
	"github.com/vechain/tokendist/builtin/solidity"
	"github.com/vechain/tokendist/log"
	"github.com/vechain/tokendist/thor"
)

var (
	logger = log.WithContext("pkg", "authority")

	slotMembers    = thor.BytesToBytes32([]byte("members"))
	slotAdminCount = thor.BytesToBytes32([]byte("admin-count"))
)

// Role is a capability that can be granted to an address.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleGamingController
	RoleStakingController
	RoleMigrationController
)

var roleNames = map[Role]string{
	RoleAdmin:               "admin",
	RoleGamingController:    "gaming-controller",
	RoleStakingController:   "staking-controller",
	RoleMigrationController: "migration-controller",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole parses the name of a role.
func ParseRole(s string) (Role, bool) {
	for r, name := range roleNames {
		if name == s {
			return r, true
		}
	}
	return 0, false
}

type member struct {
	role Role
	addr thor.Address
}

func (m member) Bytes() []byte {
	return append([]byte{byte(m.role)}, m.addr.Bytes()...)
}

// Authority is the capability registry of privileged components.
type Authority struct {
	members    *solidity.Mapping[member, bool]
	adminCount *solidity.Uint256
}

// New create a new instance.
func New(sctx *solidity.Context) *Authority {
	return &Authority{
		members:    solidity.NewMapping[member, bool](sctx, slotMembers),
		adminCount: solidity.NewUint256(sctx, slotAdminCount),
	}
}

// Has returns whether addr holds exactly the given role.
func (a *Authority) Has(role Role, addr thor.Address) (bool, error) {
	return a.members.Get(member{role, addr})
}

// Require passes when caller holds the role or is an admin.
func (a *Authority) Require(caller thor.Address, role Role) error {
	ok, err := a.Has(role, caller)
	if err != nil {
		return err
	}
	if !ok && role != RoleAdmin {
		if ok, err = a.Has(RoleAdmin, caller); err != nil {
			return err
		}
	}
	if !ok {
		return reverts.Newf(reverts.Unauthorized, "%v lacks role %v", caller, role)
	}
	return nil
}

// Grant gives the role to addr. Granting an already held role is a no-op.
func (a *Authority) Grant(role Role, addr thor.Address) error {
	if _, ok := roleNames[role]; !ok {
		return reverts.Newf(reverts.InvalidInput, "unknown role %d", role)
	}
	if addr.IsZero() {
		return reverts.New(reverts.InvalidInput, "zero address")
	}
	held, err := a.Has(role, addr)
	if err != nil || held {
		return err
	}
	if err := a.members.Set(member{role, addr}, true); err != nil {
		return err
	}
	if role == RoleAdmin {
		if err := a.adminCount.Add(big.NewInt(1)); err != nil {
			return err
		}
	}
	logger.Info("granted role", "role", role, "addr", addr)
	return nil
}

// Revoke removes the role from addr. The last admin cannot be revoked.
func (a *Authority) Revoke(role Role, addr thor.Address) error {
	held, err := a.Has(role, addr)
	if err != nil {
		return err
	}
	if !held {
		return reverts.Newf(reverts.StateViolation, "%v does not hold role %v", addr, role)
	}
	if role == RoleAdmin {
		count, err := a.adminCount.Get()
		if err != nil {
			return err
		}
		if count.Cmp(big.NewInt(1)) <= 0 {
			return reverts.New(reverts.StateViolation, "cannot revoke the last admin")
		}
		if err := a.adminCount.Sub(big.NewInt(1)); err != nil {
			return err
		}
	}
	if err := a.members.Set(member{role, addr}, false); err != nil {
		return err
	}
	logger.Info("revoked role", "role", role, "addr", addr)
	return nil
}
