// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package gamecfg defines the game account and shop records that are
// distributed as JSON configuration.
//
// Each record accepts either of two encodings: an object whose keys are the
// field names given in the struct tags, or an array listing the fields in
// declaration order. The positional form is the one written by the legacy
// configuration exporter, for example:
//
//	[[[100, 5], 12345, 7, 30], {"msg": 0, "ret": 1}]
//
// decodes as an AllUserInfo with Gold 100 and Energy 5.
package gamecfg

import (
	"maps"
	"slices"

	"github.com/creachadair/jpack/convert"
	"github.com/creachadair/jpack/tree"
)

// CurrencyInfo records the balances of a user account.
type CurrencyInfo struct {
	Gold   int32 `jpack:"m_iGold"`
	Energy int32 `jpack:"m_iEnergy"`
}

// UserInfo records the identity and progress of a user.
type UserInfo struct {
	Currency CurrencyInfo `jpack:"m_stCurrencyInfo"`
	Uin      int32        `jpack:"m_iUin"`
	GroupID  int32        `jpack:"m_iGroupID"`
	Level    int32        `jpack:"m_iLevel"`
}

// UserStatus maps status names such as "msg" and "ret" to their codes.
type UserStatus map[string]int32

// AllUserInfo is the complete account record for one user.
type AllUserInfo struct {
	User   UserInfo   `jpack:"m_stUserInfo"`
	Status UserStatus `jpack:"m_stStatus"`
}

// MonthCardItem describes one month-card offer in the shop.
type MonthCardItem struct {
	Name string `jpack:"m_strName"`
	Icon string `jpack:"m_strIcon"`
	Desc string `jpack:"m_strDesc"`
	Cost int32  `jpack:"m_iCost"`
}

// MonthCardInfo maps item IDs to month-card offers. In JSON the IDs are
// object keys, e.g. {"4001": {...}, "4002": {...}}.
type MonthCardInfo map[int32]MonthCardItem

// Keys returns the item IDs of m in increasing order.
func (m MonthCardInfo) Keys() []int32 { return slices.Sorted(maps.Keys(m)) }

// DecodeInto decodes input as a tree, and converts the tree into dst, which
// must be a non-nil pointer. Decoding failures are reported as a
// *tree.DecodeError, and conversion failures as a *convert.Error.
func DecodeInto(input []byte, dst any, opts ...tree.Option) error {
	v, err := tree.Decode(input, opts...)
	if err != nil {
		return err
	}
	return convert.Into(v, dst)
}
