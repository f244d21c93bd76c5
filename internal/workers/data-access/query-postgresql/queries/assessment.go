package queries

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"

	"visa-portal/internal/models"
)

// VisaQuestions loads the question set of one visa type with its options in
// display order. Rows with a NULL option id are questions without options.
func VisaQuestions(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	visaType, err := stringParam(params, "visaType")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT q.id, q.question_text, q.section_name, q.is_multiple, q.branch_all,
		       o.id, o.option_text, o.points, o.leads_to_question_id,
		       o.additional_questions, o.remark
		FROM visa_questions q
		LEFT JOIN visa_question_options o ON o.question_id = q.id
		WHERE q.visa_type = $1
		ORDER BY q.sort_order, q.id, o.sort_order, o.id`, visaType)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var questions []models.Question
	index := make(map[int]int)
	for rows.Next() {
		var (
			qID                 int
			qText               string
			section             sql.NullString
			multiple, branchAll sql.NullBool
			optID, points       sql.NullInt64
			optText             sql.NullString
			leadsTo, additional sql.NullInt64
			remark              sql.NullBool
		)
		if err := rows.Scan(&qID, &qText, &section, &multiple, &branchAll,
			&optID, &optText, &points, &leadsTo, &additional, &remark); err != nil {
			return nil, 0, 0, err
		}

		pos, seen := index[qID]
		if !seen {
			questions = append(questions, models.Question{
				ID:        qID,
				Text:      qText,
				Section:   strings.TrimSpace(section.String),
				VisaType:  models.VisaType(visaType),
				Multiple:  multiple.Bool,
				BranchAll: branchAll.Bool,
				Options:   []models.Option{},
			})
			pos = len(questions) - 1
			index[qID] = pos
		}
		if !optID.Valid {
			continue
		}

		opt := models.Option{
			ID:     int(optID.Int64),
			Text:   optText.String,
			Points: int(points.Int64),
		}
		if leadsTo.Valid {
			v := int(leadsTo.Int64)
			opt.LeadsTo = &v
		}
		if additional.Valid {
			v := int(additional.Int64)
			opt.AdditionalQuestion = &v
		}
		if remark.Valid {
			v := remark.Bool
			opt.Remark = &v
		}
		questions[pos].Options = append(questions[pos].Options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return questions, len(questions), execTime, nil
}

// VisaRecommendations fetches recommendation rows for the selected option
// ids, ordered by the position of the option id in the input.
func VisaRecommendations(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	ids, ok := params["optionIds"].([]int)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}
	if len(ids) == 0 {
		return []models.RecommendationRow{}, 0, 0, nil
	}

	optionIDs := make([]int64, len(ids))
	for i, id := range ids {
		optionIDs[i] = int64(id)
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT option_id, title, description, remark
		FROM visa_recommendations
		WHERE option_id = ANY($1)
		ORDER BY array_position($1, option_id), id`, pq.Array(optionIDs))
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results := []models.RecommendationRow{}
	for rows.Next() {
		var row models.RecommendationRow
		var title, description sql.NullString
		var remark sql.NullBool
		if err := rows.Scan(&row.OptionID, &title, &description, &remark); err != nil {
			return nil, 0, 0, err
		}
		row.Title = title.String
		row.Description = description.String
		row.Remark = remark.Bool
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
