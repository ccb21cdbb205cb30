package warehouse

// CostAnalysisRelation is the relation every credit usage read targets,
// whether it is a warehouse-maintained view or the locally materialized table.
const CostAnalysisRelation = "openflow_cost_analysis"

// CostAnalysisViewSQL is the reference view definition for warehouse
// deployments. The classification thresholds mirror the pure functions in
// creditusage/domain; the per-day subquery feeds every daily statistic,
// including stddev, so the summary row is internally consistent.
const CostAnalysisViewSQL = `CREATE OR REPLACE VIEW openflow_cost_analysis AS
WITH daily AS (
    SELECT
        runtime_key,
        data_plane_type,
        CAST(timestamp AS DATE)                                        AS usage_date,
        SUM(CASE WHEN credit_type = 'runtime' THEN value ELSE 0 END)    AS runtime_credits,
        SUM(CASE WHEN credit_type = 'data_plane' THEN value ELSE 0 END) AS data_plane_credits,
        SUM(value)                                                      AS day_credits,
        COUNT(DISTINCT deployment_id)                                   AS data_planes
    FROM telemetry_events
    WHERE record_type = 'METRIC'
      AND metric_name = 'credit.usage'
      AND timestamp > CURRENT_TIMESTAMP - INTERVAL '30 days'
    GROUP BY runtime_key, data_plane_type, CAST(timestamp AS DATE)
)
SELECT
    runtime_key,
    data_plane_type,
    COUNT(usage_date)                         AS active_days,
    MAX(data_planes)                          AS data_planes_used,
    SUM(runtime_credits)                      AS total_runtime_credits,
    SUM(data_plane_credits)                   AS total_data_plane_credits,
    SUM(day_credits)                          AS total_credits,
    AVG(day_credits)                          AS avg_daily_credits,
    COALESCE(STDDEV(day_credits), 0)          AS stddev_daily_credits,
    MIN(day_credits)                          AS min_daily_credits,
    MAX(day_credits)                          AS max_daily_credits,
    CASE WHEN COUNT(usage_date) > 0
         THEN SUM(day_credits) / COUNT(usage_date)
         ELSE 0 END                           AS credits_per_active_day,
    CASE WHEN SUM(day_credits) > 0
         THEN SUM(runtime_credits) / SUM(day_credits) * 100
         ELSE 0 END                           AS runtime_cost_percentage,
    CASE WHEN SUM(day_credits) > 0
         THEN SUM(data_plane_credits) / SUM(day_credits) * 100
         ELSE 0 END                           AS data_plane_cost_percentage,
    'STANDARD'                                AS cost_model,
    CASE WHEN SUM(day_credits) > 1000 THEN 'HIGH_USAGE'
         WHEN SUM(day_credits) > 100  THEN 'MEDIUM_USAGE'
         ELSE 'LOW_USAGE' END                 AS usage_category,
    CASE WHEN COUNT(usage_date) > 60 THEN 'CONTINUOUS'
         WHEN COUNT(usage_date) > 30 THEN 'FREQUENT'
         WHEN COUNT(usage_date) > 7  THEN 'REGULAR'
         ELSE 'SPORADIC' END                  AS usage_pattern,
    CASE WHEN COUNT(usage_date) = 0 THEN 'VERY_EFFICIENT'
         WHEN SUM(day_credits) / COUNT(usage_date) < 10  THEN 'VERY_EFFICIENT'
         WHEN SUM(day_credits) / COUNT(usage_date) < 50  THEN 'EFFICIENT'
         WHEN SUM(day_credits) / COUNT(usage_date) < 100 THEN 'MODERATE'
         ELSE 'INEFFICIENT' END               AS efficiency_rating,
    MIN(usage_date)                           AS first_usage_date,
    MAX(usage_date)                           AS last_usage_date
FROM daily
GROUP BY runtime_key, data_plane_type;`
