package gh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/h0rv/gpx/internal/domain"
)

// QueryResult is a decoded GraphQL response.
// When Errors is non-empty, Data is nil and the call must be treated as failed.
type QueryResult[T any] struct {
	Data   *T
	Errors []GraphQLError
}

// Err returns a *QueryError when the response carried GraphQL errors.
func (r QueryResult[T]) Err() error {
	if len(r.Errors) > 0 {
		return &QueryError{Errors: r.Errors}
	}
	return nil
}

// Shape describes how to decode the data member of one kind of response.
type Shape[T any] struct {
	name   string
	decode func(data node) (T, error)
}

// ProjectsData is the decoded project list response.
type ProjectsData struct {
	Viewer   domain.Viewer
	Projects domain.ProjectCollection
}

// Response shapes consumed by gpx.
var (
	ProjectsShape = Shape[ProjectsData]{name: "projects", decode: decodeProjectsData}
	EditorShape   = Shape[domain.ProjectDetails]{name: "editor", decode: decodeEditorData}
	AddItemShape  = Shape[domain.Item]{name: "addItem", decode: decodeAddItemData}
)

// Decode validates raw against shape.
// GraphQL errors short-circuit decoding: the result carries them and no data.
func Decode[T any](raw *RawResponse, shape Shape[T]) (QueryResult[T], error) {
	if raw == nil {
		return QueryResult[T]{}, &DecodeError{Path: "$", Reason: "empty response"}
	}
	if len(raw.Errors) > 0 {
		return QueryResult[T]{Errors: raw.Errors}, nil
	}

	root, err := parse(raw.Data)
	if err != nil {
		return QueryResult[T]{}, err
	}
	data, err := shape.decode(root)
	if err != nil {
		return QueryResult[T]{}, err
	}
	return QueryResult[T]{Data: &data}, nil
}

func decodeProjectsData(data node) (ProjectsData, error) {
	viewer, err := data.obj("viewer")
	if err != nil {
		return ProjectsData{}, err
	}
	v, err := decodeViewer(viewer)
	if err != nil {
		return ProjectsData{}, err
	}
	conn, err := viewer.obj("projectsV2")
	if err != nil {
		return ProjectsData{}, err
	}
	collection, err := decodeProjectCollection(conn)
	if err != nil {
		return ProjectsData{}, err
	}
	return ProjectsData{Viewer: v, Projects: collection}, nil
}

func decodeViewer(n node) (domain.Viewer, error) {
	var (
		v   domain.Viewer
		err error
	)
	if v.ID, err = n.str("id"); err != nil {
		return v, err
	}
	if v.Login, err = n.str("login"); err != nil {
		return v, err
	}
	if v.Name, err = n.optStr("name"); err != nil {
		return v, err
	}
	return v, nil
}

func decodeProjectCollection(n node) (domain.ProjectCollection, error) {
	var c domain.ProjectCollection

	nodes, err := n.list("nodes")
	if err != nil {
		return c, err
	}
	if c.TotalCount, err = n.integer("totalCount"); err != nil {
		return c, err
	}

	c.Nodes = make([]domain.Project, 0, len(nodes))
	for _, pn := range nodes {
		p, err := decodeProject(pn)
		if err != nil {
			return c, err
		}
		c.Nodes = append(c.Nodes, p)
	}
	return c, nil
}

func decodeProject(n node) (domain.Project, error) {
	var (
		p   domain.Project
		err error
	)
	if _, err = n.object(); err != nil {
		return p, err
	}

	id, err := n.optStr("id")
	if err != nil {
		return p, err
	}
	if id != nil {
		p.ID = *id
	}
	if p.Closed, err = n.boolean("closed"); err != nil {
		return p, err
	}
	if p.CreatedAt, err = n.timestamp("createdAt"); err != nil {
		return p, err
	}
	if p.Public, err = n.boolean("public"); err != nil {
		return p, err
	}
	if p.Number, err = n.integer("number"); err != nil {
		return p, err
	}
	if p.ResourcePath, err = n.str("resourcePath"); err != nil {
		return p, err
	}
	if p.Title, err = n.str("title"); err != nil {
		return p, err
	}
	if p.URL, err = n.str("url"); err != nil {
		return p, err
	}
	return p, nil
}

func decodeEditorData(data node) (domain.ProjectDetails, error) {
	viewer, err := data.obj("viewer")
	if err != nil {
		return domain.ProjectDetails{}, err
	}
	project, err := viewer.obj("projectV2")
	if err != nil {
		return domain.ProjectDetails{}, err
	}
	return decodeProjectDetails(project)
}

func decodeProjectDetails(n node) (domain.ProjectDetails, error) {
	var (
		d   domain.ProjectDetails
		err error
	)
	if d.ID, err = n.str("id"); err != nil {
		return d, err
	}
	if d.Title, err = n.str("title"); err != nil {
		return d, err
	}
	if d.ShortDescription, err = n.optStr("shortDescription"); err != nil {
		return d, err
	}

	items, err := n.obj("items")
	if err != nil {
		return d, err
	}
	nodes, err := items.list("nodes")
	if err != nil {
		return d, err
	}

	d.Items = make([]domain.Item, 0, len(nodes))
	for _, in := range nodes {
		item, err := decodeItem(in)
		if err != nil {
			return d, err
		}
		d.Items = append(d.Items, item)
	}
	return d, nil
}

func decodeAddItemData(data node) (domain.Item, error) {
	payload, err := data.obj("addProjectV2ItemById")
	if err != nil {
		return domain.Item{}, err
	}
	item, err := payload.obj("item")
	if err != nil {
		return domain.Item{}, err
	}
	return decodeItem(item)
}

func decodeItem(n node) (domain.Item, error) {
	var (
		item domain.Item
		err  error
	)
	if item.ID, err = n.str("id"); err != nil {
		return item, err
	}

	values, err := n.obj("fieldValues")
	if err != nil {
		return item, err
	}
	nodes, err := values.list("nodes")
	if err != nil {
		return item, err
	}

	item.FieldValues = make([]domain.FieldValue, 0, len(nodes))
	for _, vn := range nodes {
		item.FieldValues = append(item.FieldValues, decodeFieldValue(vn))
	}
	return item, nil
}

// decodeFieldValue infers the union variant from which keys are present,
// trying text, then single-select, then date. Anything else, including
// null and fragments that matched nothing ({}), is EmptyValue.
func decodeFieldValue(n node) domain.FieldValue {
	m, ok := n.value.(map[string]any)
	if !ok {
		return domain.EmptyValue{}
	}
	field := decodeFieldCommon(m["field"])

	if text, ok := m["text"].(string); ok {
		return domain.TextValue{Text: text, Field: field}
	}
	if name, ok := m["name"].(string); ok {
		return domain.SingleSelectValue{Name: name, Field: field}
	}
	if raw, ok := m["date"].(string); ok {
		if date, err := time.Parse(domain.DateLayout, raw); err == nil {
			return domain.DateValue{Date: date, Field: field}
		}
	}
	return domain.EmptyValue{}
}

// decodeFieldCommon is lenient: a missing or malformed field never
// disqualifies the value that carries it.
func decodeFieldCommon(v any) domain.FieldCommon {
	var fc domain.FieldCommon
	m, ok := v.(map[string]any)
	if !ok {
		return fc
	}
	if name, ok := m["name"].(string); ok {
		fc.Name = name
	}
	if dt, ok := m["dataType"].(string); ok {
		fc.DataType = &dt
	}
	return fc
}

// node is a JSON value together with its path from the response root,
// used to report exactly where a response broke its expected shape.
type node struct {
	path  string
	value any
}

func parse(data json.RawMessage) (node, error) {
	root := node{path: "data"}
	if len(bytes.TrimSpace(data)) == 0 {
		return root, root.fail("missing")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&root.value); err != nil {
		return root, root.fail(fmt.Sprintf("malformed JSON: %v", err))
	}
	if root.value == nil {
		return root, root.fail("is null")
	}
	return root, nil
}

func (n node) fail(reason string) error {
	return &DecodeError{Path: n.path, Reason: reason}
}

func (n node) object() (map[string]any, error) {
	m, ok := n.value.(map[string]any)
	if !ok {
		return nil, n.fail(fmt.Sprintf("expected object, got %s", kind(n.value)))
	}
	return m, nil
}

// field returns the child at key. A missing key yields a nil value.
func (n node) field(key string) (node, error) {
	m, err := n.object()
	if err != nil {
		return node{}, err
	}
	return node{path: n.path + "." + key, value: m[key]}, nil
}

// required returns the child at key, failing when it is missing or null.
func (n node) required(key string) (node, error) {
	child, err := n.field(key)
	if err != nil {
		return child, err
	}
	if child.value == nil {
		return child, child.fail("required field is missing or null")
	}
	return child, nil
}

func (n node) obj(key string) (node, error) {
	child, err := n.required(key)
	if err != nil {
		return child, err
	}
	if _, err := child.object(); err != nil {
		return child, err
	}
	return child, nil
}

func (n node) list(key string) ([]node, error) {
	child, err := n.required(key)
	if err != nil {
		return nil, err
	}
	items, ok := child.value.([]any)
	if !ok {
		return nil, child.fail(fmt.Sprintf("expected array, got %s", kind(child.value)))
	}
	nodes := make([]node, len(items))
	for i, v := range items {
		nodes[i] = node{path: child.path + "[" + strconv.Itoa(i) + "]", value: v}
	}
	return nodes, nil
}

func (n node) str(key string) (string, error) {
	child, err := n.required(key)
	if err != nil {
		return "", err
	}
	s, ok := child.value.(string)
	if !ok {
		return "", child.fail(fmt.Sprintf("expected string, got %s", kind(child.value)))
	}
	return s, nil
}

// optStr returns nil for a missing or null string.
func (n node) optStr(key string) (*string, error) {
	child, err := n.field(key)
	if err != nil || child.value == nil {
		return nil, err
	}
	s, ok := child.value.(string)
	if !ok {
		return nil, child.fail(fmt.Sprintf("expected string or null, got %s", kind(child.value)))
	}
	return &s, nil
}

func (n node) boolean(key string) (bool, error) {
	child, err := n.required(key)
	if err != nil {
		return false, err
	}
	b, ok := child.value.(bool)
	if !ok {
		return false, child.fail(fmt.Sprintf("expected boolean, got %s", kind(child.value)))
	}
	return b, nil
}

func (n node) integer(key string) (int, error) {
	child, err := n.required(key)
	if err != nil {
		return 0, err
	}
	num, ok := child.value.(json.Number)
	if !ok {
		return 0, child.fail(fmt.Sprintf("expected integer, got %s", kind(child.value)))
	}
	i, err := strconv.Atoi(num.String())
	if err != nil {
		return 0, child.fail(fmt.Sprintf("expected integer, got %s", num))
	}
	return i, nil
}

func (n node) timestamp(key string) (time.Time, error) {
	s, err := n.str(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, (node{path: n.path + "." + key}).fail(fmt.Sprintf("expected RFC 3339 timestamp, got %q", s))
	}
	return t, nil
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
