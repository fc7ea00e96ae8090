package streams

import (
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNilImage = errors.New("event image is nil")

// toAttributeValue converts a Lambda stream attribute into the SDK type so
// the attributevalue decoder and its struct tags can be reused.
func toAttributeValue(v events.DynamoDBAttributeValue) (dynamodbtypes.AttributeValue, error) {
	switch v.DataType() {
	case events.DataTypeString:
		return &dynamodbtypes.AttributeValueMemberS{Value: v.String()}, nil
	case events.DataTypeNumber:
		return &dynamodbtypes.AttributeValueMemberN{Value: v.Number()}, nil
	case events.DataTypeBinary:
		return &dynamodbtypes.AttributeValueMemberB{Value: v.Binary()}, nil
	case events.DataTypeBoolean:
		return &dynamodbtypes.AttributeValueMemberBOOL{Value: v.Boolean()}, nil
	case events.DataTypeNull:
		return &dynamodbtypes.AttributeValueMemberNULL{Value: v.IsNull()}, nil
	case events.DataTypeStringSet:
		return &dynamodbtypes.AttributeValueMemberSS{Value: v.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &dynamodbtypes.AttributeValueMemberNS{Value: v.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &dynamodbtypes.AttributeValueMemberBS{Value: v.BinarySet()}, nil
	case events.DataTypeMap:
		item, err := imageToItem(v.Map())
		if err != nil {
			return nil, fmt.Errorf("map attribute: %w", err)
		}
		return &dynamodbtypes.AttributeValueMemberM{Value: item}, nil
	case events.DataTypeList:
		list := make([]dynamodbtypes.AttributeValue, 0, len(v.List()))
		for i, elem := range v.List() {
			converted, err := toAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list item %d: %w", i, err)
			}
			list = append(list, converted)
		}
		return &dynamodbtypes.AttributeValueMemberL{Value: list}, nil
	}
	return nil, fmt.Errorf("unsupported attribute type: %v", v.DataType())
}

func imageToItem(image map[string]events.DynamoDBAttributeValue) (map[string]dynamodbtypes.AttributeValue, error) {
	item := make(map[string]dynamodbtypes.AttributeValue, len(image))
	for name, v := range image {
		converted, err := toAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		item[name] = converted
	}
	return item, nil
}

// UnmarshalImage decodes a stream NewImage or OldImage into out using its
// dynamodbav tags.
func UnmarshalImage[T any](image map[string]events.DynamoDBAttributeValue, out *T) error {
	if image == nil {
		return ErrNilImage
	}
	item, err := imageToItem(image)
	if err != nil {
		return fmt.Errorf("failed to convert stream image: %w", err)
	}
	return attributevalue.UnmarshalMap(item, out)
}
