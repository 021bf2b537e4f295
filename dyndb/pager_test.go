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
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dyntable/dyndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var nextKey = map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: "next"}}

func firstPage(in *dynamodb.QueryInput) bool  { return in.ExclusiveStartKey == nil }
func secondPage(in *dynamodb.QueryInput) bool { return assert.ObjectsAreEqual(nextKey, in.ExclusiveStartKey) }

func TestQueryAll_FollowsContinuation(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("Query", mock.Anything, mock.MatchedBy(firstPage)).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{{"pk": s("a"), "v": n("1")}},
		LastEvaluatedKey: nextKey,
	}, nil).Once()
	client.On("Query", mock.Anything, mock.MatchedBy(secondPage)).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{"pk": s("a"), "v": n("2")}},
	}, nil).Once()

	var got []dyndb.Record
	for rec, err := range table.QueryAll(context.Background(), "a") {
		require.NoError(t, err)
		got = append(got, rec)
	}

	assert.Equal(t, []dyndb.Record{{"pk": "a", "v": int64(1)}, {"pk": "a", "v": int64(2)}}, got)
	client.AssertNumberOfCalls(t, "Query", 2)
	client.AssertExpectations(t)
}

func TestScanAll_FollowsContinuation(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("Scan", mock.Anything, &dynamodb.ScanInput{
		TableName: aws.String("test-table"),
		Limit:     aws.Int32(1),
	}).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{{"pk": s("x")}},
		LastEvaluatedKey: nextKey,
	}, nil).Once()
	client.On("Scan", mock.Anything, &dynamodb.ScanInput{
		TableName:         aws.String("test-table"),
		Limit:             aws.Int32(1),
		ExclusiveStartKey: nextKey,
	}).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{{"pk": s("y")}},
	}, nil).Once()

	var keys []any
	for rec, err := range table.ScanAll(context.Background(), dyndb.WithLimit(1)) {
		require.NoError(t, err)
		keys = append(keys, rec["pk"])
	}

	assert.Equal(t, []any{"x", "y"}, keys)
	client.AssertNumberOfCalls(t, "Scan", 2)
}

func TestQueryAll_EarlyBreakStopsFetching(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("Query", mock.Anything, mock.MatchedBy(firstPage)).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{{"pk": s("a")}, {"pk": s("b")}},
		LastEvaluatedKey: nextKey,
	}, nil).Once()

	count := 0
	for _, err := range table.QueryAll(context.Background(), "a") {
		require.NoError(t, err)
		count++
		break
	}

	assert.Equal(t, 1, count)
	client.AssertNumberOfCalls(t, "Query", 1)
}

func TestQueryAll_ErrorOnLaterPage(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)
	boom := errors.New("backend down")

	client.On("Query", mock.Anything, mock.MatchedBy(firstPage)).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{{"pk": s("a")}},
		LastEvaluatedKey: nextKey,
	}, nil).Once()
	client.On("Query", mock.Anything, mock.MatchedBy(secondPage)).Return(nil, boom).Once()

	var items int
	var errs []error
	for _, err := range table.QueryAll(context.Background(), "a") {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items++
	}

	assert.Equal(t, 1, items)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestQueryAll_SingleUse(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)

	client.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{"pk": s("a")}},
	}, nil).Once()

	seq := table.QueryAll(context.Background(), "a")
	for _, err := range seq {
		require.NoError(t, err)
	}

	var second []error
	for _, err := range seq {
		second = append(second, err)
	}
	require.Len(t, second, 1)
	assert.ErrorIs(t, second[0], dyndb.ErrSequenceConsumed)
	client.AssertNumberOfCalls(t, "Query", 1)
}

func TestScanAll_ContextCancelledBetweenPages(t *testing.T) {
	t.Parallel()

	client := &MockDynamoClient{}
	table := createTestTable(t, client)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client.On("Scan", mock.Anything, mock.Anything).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{{"pk": s("x")}},
		LastEvaluatedKey: nextKey,
	}, nil).Once()

	var lastErr error
	for _, err := range table.ScanAll(ctx) {
		if err != nil {
			lastErr = err
			continue
		}
		cancel()
	}

	assert.ErrorIs(t, lastErr, context.Canceled)
	client.AssertNumberOfCalls(t, "Scan", 1)
}
