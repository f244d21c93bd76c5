package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"visa-portal/internal/models"
)

const countryColumns = `id, slug, name, summary, visa_info, hero_image, process_days, updated_at`

func scanCountry(scan func(dest ...interface{}) error) (models.Country, error) {
	var c models.Country
	var summary, visaInfo, heroImage sql.NullString
	var processDays sql.NullInt64
	err := scan(&c.ID, &c.Slug, &c.Name, &summary, &visaInfo, &heroImage, &processDays, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Summary = summary.String
	c.VisaInfo = visaInfo.String
	c.HeroImage = heroImage.String
	c.ProcessDays = int(processDays.Int64)
	return c, nil
}

func CountriesList(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	limit, offset := page(params)
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+countryColumns+`
		FROM countries
		WHERE is_published = true
		ORDER BY name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results := []models.Country{}
	for rows.Next() {
		c, err := scanCountry(rows.Scan)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func CountryBySlug(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	slug, err := stringParam(params, "slug")
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()

	row := db.QueryRowContext(ctx, `
		SELECT `+countryColumns+`
		FROM countries
		WHERE slug = $1 AND is_published = true`, slug)
	c, err := scanCountry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return &c, 1, execTime, nil
}

const blogColumns = `id, slug, title, excerpt, author, cover_image, published_at`

func scanBlogPost(scan func(dest ...interface{}) error, withBody bool) (models.BlogPost, error) {
	var p models.BlogPost
	var excerpt, author, cover, body sql.NullString
	dest := []interface{}{&p.ID, &p.Slug, &p.Title, &excerpt, &author, &cover, &p.PublishedAt}
	if withBody {
		dest = append(dest, &body)
	}
	if err := scan(dest...); err != nil {
		return p, err
	}
	p.Excerpt = excerpt.String
	p.Author = author.String
	p.CoverImage = cover.String
	p.Body = body.String
	return p, nil
}

// BlogPostsList returns published posts newest first, without bodies.
func BlogPostsList(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	limit, offset := page(params)
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT `+blogColumns+`
		FROM blog_posts
		WHERE is_published = true
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results := []models.BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows.Scan, false)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func BlogPostBySlug(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	slug, err := stringParam(params, "slug")
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()

	row := db.QueryRowContext(ctx, `
		SELECT `+blogColumns+`, body
		FROM blog_posts
		WHERE slug = $1 AND is_published = true`, slug)
	p, err := scanBlogPost(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return &p, 1, execTime, nil
}

const tripColumns = `id, title, country_slug, duration_days, price_from, currency, summary, highlights, image`

func scanTripPackage(scan func(dest ...interface{}) error) (models.TripPackage, error) {
	var tp models.TripPackage
	var summary, image, currency sql.NullString
	var highlights pq.StringArray
	err := scan(&tp.ID, &tp.Title, &tp.CountrySlug, &tp.DurationDays, &tp.PriceFrom,
		&currency, &summary, &highlights, &image)
	if err != nil {
		return tp, err
	}
	tp.Currency = currency.String
	tp.Summary = summary.String
	tp.Image = image.String
	tp.Highlights = []string(highlights)
	return tp, nil
}

// TripPackagesList returns active packages, optionally for one country.
func TripPackagesList(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	limit, offset := page(params)
	start := time.Now()

	var rows *sql.Rows
	var err error
	if country, _ := params["countrySlug"].(string); country != "" {
		rows, err = db.QueryContext(ctx, `
			SELECT `+tripColumns+`
			FROM trip_packages
			WHERE is_active = true AND country_slug = $1
			ORDER BY price_from, id
			LIMIT $2 OFFSET $3`, country, limit, offset)
	} else {
		rows, err = db.QueryContext(ctx, `
			SELECT `+tripColumns+`
			FROM trip_packages
			WHERE is_active = true
			ORDER BY price_from, id
			LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results := []models.TripPackage{}
	for rows.Next() {
		tp, err := scanTripPackage(rows.Scan)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func TripPackageByID(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	id, ok := intParam(params, "id")
	if !ok || id <= 0 {
		return nil, 0, 0, ErrMissingParam
	}
	start := time.Now()

	row := db.QueryRowContext(ctx, `
		SELECT `+tripColumns+`
		FROM trip_packages
		WHERE id = $1 AND is_active = true`, id)
	tp, err := scanTripPackage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return &tp, 1, execTime, nil
}
