// flex_id.go
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

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID is an entity id that can be unmarshaled from either a JSON number or a numeric string.
// Form posts from the browser client send ids as strings.
type FlexID uint

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		val, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexID: invalid id string %q: %w", s, err)
		}
		*f = FlexID(val)
		return nil
	}

	return fmt.Errorf("FlexID: unexpected type, expected number or string")
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

func (f FlexID) Uint() uint {
	return uint(f)
}
