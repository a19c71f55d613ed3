/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/unitofwork/snapshot"
)

const (
	keyPrefix  = "SNAPSHOT#"
	sortKey    = "SNAPSHOT"
	attrPK     = "PK"
	attrSK     = "SK"
	attrData   = "Data"
	attrSaved  = "SavedAt"
	entityType = "Snapshot"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
}

// Store implements snapshot.Store on a DynamoDB table with a PK/SK key schema.
// Each snapshot is one item whose Data attribute holds the property map.
type Store struct {
	client    API
	tableName string
	now       func() time.Time
}

var _ snapshot.Store = (*Store)(nil)

// NewDynamoDBClient initializes a DynamoDB client using static AWS credentials.
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// NewStore wraps an existing client.
func NewStore(client API, tableName string) *Store {
	return &Store{client: client, tableName: tableName, now: time.Now}
}

// NewSnapshotStore builds a client from static credentials and wraps it.
func NewSnapshotStore(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, tableName string) (*Store, error) {
	client, err := NewDynamoDBClient(ctx, awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewStore(client, tableName), nil
}

func itemKey(transientID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: keyPrefix + transientID},
		attrSK: &types.AttributeValueMemberS{Value: sortKey},
	}
}

// Get loads the snapshot for transientID. Numbers come back as float64, times as
// RFC 3339 strings, named strings and bools as plain ones and structs as maps;
// snapshot.Equal treats all of them as equal to the live values.
func (s *Store) Get(ctx context.Context, transientID string) (snapshot.Snapshot, bool, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &s.tableName,
		Key:            itemKey(transientID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return snapshot.Snapshot{}, false, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return snapshot.Snapshot{}, false, nil
	}

	values := map[string]any{}
	if data, ok := out.Item[attrData]; ok {
		if err := attributevalue.Unmarshal(data, &values); err != nil {
			return snapshot.Snapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
	}
	return snapshot.New(values), true, nil
}

// Put writes snap, replacing any previous item for transientID.
func (s *Store) Put(ctx context.Context, transientID string, snap snapshot.Snapshot) error {
	values := snap.Values()
	for k, v := range values {
		values[k] = encodable(v)
	}
	data, err := attributevalue.MarshalMap(values)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	item := itemKey(transientID)
	item[attrData] = &types.AttributeValueMemberM{Value: data}
	item[attrSaved] = &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)}
	item["EntityType"] = &types.AttributeValueMemberS{Value: entityType}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Remove deletes the item for transientID. Deleting a missing item is not an error.
func (s *Store) Remove(ctx context.Context, transientID string) error {
	_, err := s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &s.tableName,
		Key:       itemKey(transientID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// encodable converts values attributevalue cannot marshal faithfully.
func encodable(v any) any {
	switch t := v.(type) {
	case strfmt.DateTime:
		return time.Time(t)
	case *strfmt.DateTime:
		if t == nil {
			return nil
		}
		return time.Time(*t)
	case strfmt.Date:
		return time.Time(t)
	}
	return v
}
