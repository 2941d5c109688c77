package gh

// Response bodies as GitHub returns them for the queries in this package.

const projectsFixture = `{
  "data": {
    "viewer": {
      "id": "U_kgDOA",
      "login": "octocat",
      "name": "The Octocat",
      "projectsV2": {
        "nodes": [
          {
            "closed": false,
            "createdAt": "2024-03-05T10:11:12Z",
            "public": true,
            "number": 3,
            "resourcePath": "/users/octocat/projects/3",
            "title": "Roadmap :rocket:",
            "url": "https://github.com/users/octocat/projects/3"
          },
          {
            "closed": true,
            "createdAt": "2023-01-02T00:00:00Z",
            "public": false,
            "number": 1,
            "resourcePath": "/users/octocat/projects/1",
            "title": "Archive",
            "url": "https://github.com/users/octocat/projects/1"
          },
          {
            "closed": false,
            "createdAt": "2023-06-30T23:59:59Z",
            "public": false,
            "number": 2,
            "resourcePath": "/users/octocat/projects/2",
            "title": "Bugs",
            "url": "https://github.com/users/octocat/projects/2"
          }
        ],
        "totalCount": 5
      }
    }
  }
}`

const editorFixture = `{
  "data": {
    "viewer": {
      "projectV2": {
        "id": "PVT_7",
        "title": "Sprint :+1:",
        "shortDescription": null,
        "items": {
          "nodes": [
            {
              "id": "PVTI_1",
              "fieldValues": {
                "nodes": [
                  {"text": "Ship it :rocket:", "field": {"name": "Title", "dataType": "TITLE"}},
                  {"name": "In Progress", "field": {"name": "Status", "dataType": "SINGLE_SELECT"}},
                  {"date": "2024-05-01", "field": {"name": "Due", "dataType": "DATE"}},
                  {},
                  {"number": 3, "field": {"name": "Estimate"}}
                ]
              }
            },
            {
              "id": "PVTI_2",
              "fieldValues": {
                "nodes": [
                  {"text": "Plain", "field": {"name": "Title"}},
                  {"date": "not-a-date", "field": {"name": "Due"}},
                  null
                ]
              }
            }
          ]
        }
      }
    }
  }
}`

const addItemFixture = `{
  "data": {
    "addProjectV2ItemById": {
      "item": {
        "id": "PVTI_new",
        "fieldValues": {
          "nodes": [
            {"text": "Write docs", "field": {"name": "Title", "dataType": "TITLE"}},
            {"name": "Todo", "field": {"name": "Status", "dataType": "SINGLE_SELECT"}},
            {"text": "All of them", "field": {"name": "Body", "dataType": "TEXT"}}
          ]
        }
      }
    }
  }
}`
