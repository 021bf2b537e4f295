// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package dyndb_test

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dyntable/dyndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_PreservesKeyTypes(t *testing.T) {
	t.Parallel()

	key := map[string]types.AttributeValue{
		"pk":  &types.AttributeValueMemberS{Value: "tenant#1"},
		"sk":  &types.AttributeValueMemberN{Value: "42"},
		"bin": &types.AttributeValueMemberB{Value: []byte{0x1, 0x2}},
	}

	token, err := dyndb.EncodeToken(key)
	require.NoError(t, err)
	assert.NotContains(t, token, "tenant")

	decoded, err := dyndb.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
}

func TestToken_Empty(t *testing.T) {
	t.Parallel()

	token, err := dyndb.EncodeToken(nil)
	require.NoError(t, err)
	assert.Empty(t, token)

	key, err := dyndb.DecodeToken("")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestToken_Invalid(t *testing.T) {
	t.Parallel()

	_, err := dyndb.DecodeToken("0OIl")
	assert.ErrorIs(t, err, dyndb.ErrInvalidToken)

	_, err = dyndb.DecodeToken("3mJr7AoUXx2Wqd")
	assert.ErrorIs(t, err, dyndb.ErrInvalidToken)

	_, err = dyndb.EncodeToken(map[string]types.AttributeValue{"x": &types.AttributeValueMemberBOOL{Value: true}})
	assert.Error(t, err)
}
