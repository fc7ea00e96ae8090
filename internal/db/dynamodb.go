package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/spacesedan/moodflow/internal/models"
)

const (
	ENTRIES_TABLE_NAME = "JournalEntries"
	MAX_BATCH_SIZE     = 25

	// fixed width so entry IDs sort lexicographically in time order
	ENTRY_ID_TIME_LAYOUT = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrEntryNotFound = errors.New("journal entry not found")

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	dynamodb.QueryAPIClient
	dynamodb.ScanAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// EntryStore keeps journal entries in a table keyed by user_id and entry_id.
type EntryStore struct {
	client DynamoAPI
	table  string
	// Backoff is the first wait between unprocessed batch retries.
	Backoff time.Duration
}

func NewEntryStore(client DynamoAPI, table string) *EntryStore {
	if table == "" {
		table = ENTRIES_TABLE_NAME
	}
	return &EntryStore{client: client, table: table, Backoff: 500 * time.Millisecond}
}

// NewEntryID returns a time ordered sort key for an entry created at t.
func NewEntryID(t time.Time) string {
	return t.UTC().Format(ENTRY_ID_TIME_LAYOUT) + "#" + uuid.NewString()
}

func entryIDLowerBound(t time.Time) string {
	return t.UTC().Format(ENTRY_ID_TIME_LAYOUT)
}

func entryKey(userID, entryID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id":  &types.AttributeValueMemberS{Value: userID},
		"entry_id": &types.AttributeValueMemberS{Value: entryID},
	}
}

func (s *EntryStore) PutEntry(ctx context.Context, entry models.JournalEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal entry: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to put entry: %w", err)
	}

	slog.Debug("[DynamoDB] Stored journal entry",
		slog.String("user_id", entry.UserID),
		slog.String("entry_id", entry.EntryID))
	return nil
}

// PutEntries writes entries in batches of 25, retrying unprocessed items.
func (s *EntryStore) PutEntries(ctx context.Context, entries []models.JournalEntry) error {
	for i := 0; i < len(entries); i += MAX_BATCH_SIZE {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := min(i+MAX_BATCH_SIZE, len(entries))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, entry := range entries[i:end] {
			item, err := attributevalue.MarshalMap(entry)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal entry: %w", err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.table: writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write entries: %w", err)
		}

		retryCount := 0
		backoff := s.Backoff
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoff)
			backoff *= 2
			slog.Warn("[DynamoDB] Retrying unprocessed entries...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))

			out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
			}
			retryCount++
		}

		if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
			return fmt.Errorf("[DynamoDB] %d entries were not written after retries", remaining)
		}
	}

	slog.Info("[DynamoDB] Successfully stored entries", slog.Int("count", len(entries)))
	return nil
}

func (s *EntryStore) query(ctx context.Context, input *dynamodb.QueryInput, limit int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	paginator := dynamodb.NewQueryPaginator(s.client, input)

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Query for entries failed: %w", err)
		}

		var page []models.JournalEntry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal entry page: %w", err)
		}
		entries = append(entries, page...)

		if limit > 0 && len(entries) >= limit {
			return entries[:limit], nil
		}
	}
	return entries, nil
}

// GetEntries returns all entries of a user, newest first.
func (s *EntryStore) GetEntries(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	return s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}, 0)
}

// GetEntriesSince returns the entries created at or after since, oldest first.
func (s *EntryStore) GetEntriesSince(ctx context.Context, userID string, since time.Time) ([]models.JournalEntry, error) {
	return s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("user_id = :u AND entry_id >= :since"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u":     &types.AttributeValueMemberS{Value: userID},
			":since": &types.AttributeValueMemberS{Value: entryIDLowerBound(since)},
		},
		ScanIndexForward: aws.Bool(true),
	}, 0)
}

// GetUnanalyzedEntries returns up to limit entries without an emotion, newest first.
func (s *EntryStore) GetUnanalyzedEntries(ctx context.Context, userID string, limit int) ([]models.JournalEntry, error) {
	return s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("user_id = :u"),
		FilterExpression:       aws.String("attribute_not_exists(emotion)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}, limit)
}

// UpdateEntryAnalysis writes an analysis result onto an existing entry.
func (s *EntryStore) UpdateEntryAnalysis(ctx context.Context, userID, entryID string, result models.AnalysisResult) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 entryKey(userID, entryID),
		ConditionExpression: aws.String("attribute_exists(entry_id)"),
		UpdateExpression: aws.String("SET emotion = :e, sentiment = :s, mood_label = :m, " +
			"ai_reflection = :r, analysis_source = :src"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":   &types.AttributeValueMemberS{Value: result.Emotion},
			":s":   &types.AttributeValueMemberN{Value: strconv.FormatFloat(result.SentimentScore, 'f', -1, 64)},
			":m":   &types.AttributeValueMemberS{Value: result.Emotion},
			":r":   &types.AttributeValueMemberS{Value: result.ReflectivePrompt},
			":src": &types.AttributeValueMemberS{Value: result.Source},
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("[DynamoDB] %w: %s/%s", ErrEntryNotFound, userID, entryID)
		}
		return fmt.Errorf("[DynamoDB] Failed to update entry analysis: %w", err)
	}
	return nil
}

func (s *EntryStore) scan(ctx context.Context, input *dynamodb.ScanInput) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	paginator := dynamodb.NewScanPaginator(s.client, input)

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for entries failed: %w", err)
		}
		var page []models.JournalEntry
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal entry page", slog.String("error", err.Error()))
			return nil, err
		}
		entries = append(entries, page...)
	}
	return entries, nil
}

// ScanAllEntries reads the whole table.
func (s *EntryStore) ScanAllEntries(ctx context.Context) ([]models.JournalEntry, error) {
	entries, err := s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	if err != nil {
		return nil, err
	}
	slog.Info("[DynamoDB] Successfully retrieved entries", slog.Int("count", len(entries)))
	return entries, nil
}

// UsersWithUnanalyzedEntries lists the users that have at least one unscored
// entry, in first-seen order.
func (s *EntryStore) UsersWithUnanalyzedEntries(ctx context.Context) ([]string, error) {
	entries, err := s.scan(ctx, &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		FilterExpression:     aws.String("attribute_not_exists(emotion)"),
		ProjectionExpression: aws.String("user_id"),
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var users []string
	for _, entry := range entries {
		if _, ok := seen[entry.UserID]; ok || strings.TrimSpace(entry.UserID) == "" {
			continue
		}
		seen[entry.UserID] = struct{}{}
		users = append(users, entry.UserID)
	}
	return users, nil
}
