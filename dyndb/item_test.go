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
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dyntable/dyndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetItem_Success(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("GetItem", mock.Anything, &dynamodb.GetItemInput{
		TableName:      aws.String("test-table"),
		Key:            map[string]types.AttributeValue{"pk": s("123")},
		ConsistentRead: aws.Bool(true),
	}).Return(&dynamodb.GetItemOutput{
		Item: map[string]types.AttributeValue{"pk": s("123"), "count": n("9")},
	}, nil).Once()

	rec, err := table.GetItem(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, dyndb.Record{"pk": "123", "count": int64(9)}, rec)
	client.AssertExpectations(t)
}

func TestGetItem_NotFound(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil).Once()

	_, err := table.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, dyndb.ErrNotFound)
}

func TestGetItem_ArityMismatch(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	_, err := table.GetItem(context.Background(), "a", "b")
	assert.ErrorIs(t, err, dyndb.ErrKeyArity)
	client.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

func TestPutItem(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("PutItem", mock.Anything, &dynamodb.PutItemInput{
		TableName: aws.String("test-table"),
		Item:      map[string]types.AttributeValue{"pk": s("1"), "count": n("3")},
	}).Return(&dynamodb.PutItemOutput{}, nil).Once()

	err := table.PutItem(context.Background(), dyndb.Record{"pk": "1", "count": 3})
	require.NoError(t, err)

	err = table.PutItem(context.Background(), dyndb.Record{"count": 3})
	assert.ErrorIs(t, err, dyndb.ErrKeyArity)
	client.AssertExpectations(t)
}

func TestPutItem_ConditionalFailure(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}).Once()

	err := table.PutItem(context.Background(), map[string]any{"pk": "1"})
	require.Error(t, err)
	assert.True(t, dyndb.IsConditionalCheckFailed(err))
}

func TestDeleteItem(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table, err := dyndb.Open("test-table", [2]string{"pk", "sk"}, staticProvider(client))
	require.NoError(t, err)

	client.On("DeleteItem", mock.Anything, &dynamodb.DeleteItemInput{
		TableName: aws.String("test-table"),
		Key:       map[string]types.AttributeValue{"pk": s("a"), "sk": s("b")},
	}).Return(&dynamodb.DeleteItemOutput{}, nil).Once()

	require.NoError(t, table.DeleteItem(context.Background(), "a", "b"))
	client.AssertExpectations(t)
}
