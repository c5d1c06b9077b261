package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-lms/internal/application"
	"github.com/oksasatya/go-ddd-lms/internal/domain/entity"
	"github.com/oksasatya/go-ddd-lms/pkg/helpers"
)

const requestTimeout = 3 * time.Second

// CourseIndex keeps published courses searchable in Elasticsearch.
type CourseIndex struct {
	ES     *elasticsearch.Client
	Name   string
	Logger *logrus.Logger
}

func NewCourseIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *CourseIndex {
	return &CourseIndex{ES: es, Name: index, Logger: logger}
}

type courseDoc struct {
	ID            string  `json:"id"`
	EducatorID    string  `json:"educator_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	FinalPrice    float64 `json:"final_price"`
	AverageRating float64 `json:"average_rating"`
	Students      int     `json:"students"`
	UpdatedAt     string  `json:"updated_at"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "title":          {"type": "text"},
      "description":    {"type": "text"},
      "category":       {"type": "keyword"},
      "educator_id":    {"type": "keyword"},
      "final_price":    {"type": "float"},
      "average_rating": {"type": "float"},
      "students":       {"type": "integer"},
      "updated_at":     {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when missing.
func (x *CourseIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{x.Name}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = esapi.IndicesCreateRequest{Index: x.Name, Body: bytes.NewReader([]byte(mapping))}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("create index %s: %s", x.Name, res.Status())
	}
	helpers.LogInfo(x.Logger, "course index ready", logrus.Fields{"index": x.Name})
	return nil
}

func (x *CourseIndex) Index(ctx context.Context, course *entity.Course) error {
	doc := courseDoc{
		ID:            course.ID,
		EducatorID:    course.EducatorID,
		Title:         course.Title,
		Description:   course.Description,
		Category:      course.Category,
		FinalPrice:    course.FinalPrice(),
		AverageRating: course.AverageRating(),
		Students:      len(course.EnrolledStudents),
		UpdatedAt:     course.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Name, DocumentID: course.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index course %s: %s", course.ID, res.Status())
	}
	return nil
}

func (x *CourseIndex) Remove(ctx context.Context, courseID string) error {
	req := esapi.DeleteRequest{Index: x.Name, DocumentID: courseID}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove course %s: %s", courseID, res.Status())
	}
	return nil
}

// Search runs a multi_match on title, category and description and returns
// course ids by relevance.
func (x *CourseIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^3", "category^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"size":    size,
		"_source": false,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Name), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search courses: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

var _ application.CourseIndexer = (*CourseIndex)(nil)
