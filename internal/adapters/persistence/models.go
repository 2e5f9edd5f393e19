package persistence

import "time"

// DecadeRowModel represents the decade_plan_rows table. Machine code lists
// are stored comma-joined in spreadsheet column order.
type DecadeRowModel struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BatchID          string    `gorm:"column:batch_id;index;not null"`
	WorkOrderNr      string    `gorm:"column:work_order_nr"`
	ArticleNr        string    `gorm:"column:article_nr;not null"`
	PackageType      string    `gorm:"column:package_type"`
	Spec             string    `gorm:"column:spec"`
	QtyTotal         int       `gorm:"column:qty_total;not null"`
	QtyFinal         int       `gorm:"column:qty_final;not null"`
	FeederCodes      string    `gorm:"column:feeder_codes;not null"`
	MakerCodes       string    `gorm:"column:maker_codes;not null"`
	PlannedStart     time.Time `gorm:"column:planned_start;not null;index"`
	PlannedEnd       time.Time `gorm:"column:planned_end;not null"`
	RowNr            int       `gorm:"column:row_nr;not null"`
	ValidationStatus string    `gorm:"column:validation_status;not null;default:'VALID'"`
}

func (DecadeRowModel) TableName() string {
	return "decade_plan_rows"
}

// MachineModel represents the machines table
type MachineModel struct {
	Code   string `gorm:"column:code;primaryKey"`
	Kind   string `gorm:"column:kind;not null"`
	Status string `gorm:"column:status;not null;default:'ACTIVE'"`
}

func (MachineModel) TableName() string {
	return "machines"
}

// RelationModel represents the machine_relations table
type RelationModel struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	FeederCode    string     `gorm:"column:feeder_code;index;not null"`
	MakerCode     string     `gorm:"column:maker_code;index;not null"`
	Priority      int        `gorm:"column:priority;not null;default:0"`
	EffectiveFrom *time.Time `gorm:"column:effective_from"`
	EffectiveTo   *time.Time `gorm:"column:effective_to"`
}

func (RelationModel) TableName() string {
	return "machine_relations"
}

// SpeedModel represents the machine_speeds table. MachineCode and ArticleNr
// may hold the "*" wildcard.
type SpeedModel struct {
	ID           int64   `gorm:"column:id;primaryKey;autoIncrement"`
	MachineCode  string  `gorm:"column:machine_code;index;not null"`
	ArticleNr    string  `gorm:"column:article_nr;index;not null"`
	BoxesPerHour float64 `gorm:"column:boxes_per_hour;not null"`
	Efficiency   float64 `gorm:"column:efficiency;not null;default:1"`
}

func (SpeedModel) TableName() string {
	return "machine_speeds"
}

// ShiftModel represents the shift_windows table. Day offsets are stored as
// minutes from local midnight.
type ShiftModel struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ShiftName      string     `gorm:"column:shift_name;not null"`
	MachineScope   string     `gorm:"column:machine_scope;not null;default:'*'"`
	StartMinutes   int        `gorm:"column:start_minutes;not null"`
	EndMinutes     int        `gorm:"column:end_minutes;not null"`
	MayOvertime    bool       `gorm:"column:may_overtime;not null;default:false"`
	MaxOvertimeMin int        `gorm:"column:max_overtime_minutes;not null;default:0"`
	EffectiveFrom  *time.Time `gorm:"column:effective_from"`
	EffectiveTo    *time.Time `gorm:"column:effective_to"`
}

func (ShiftModel) TableName() string {
	return "shift_windows"
}

// MaintenanceModel represents the maintenance_windows table
type MaintenanceModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	MachineCode string    `gorm:"column:machine_code;index;not null"`
	StartTime   time.Time `gorm:"column:start_time;not null"`
	EndTime     time.Time `gorm:"column:end_time;not null"`
	Status      string    `gorm:"column:status;not null;default:'PLANNED'"`
}

func (MaintenanceModel) TableName() string {
	return "maintenance_windows"
}

// SchedulingTaskModel represents the scheduling_tasks table
type SchedulingTaskModel struct {
	TaskID            string     `gorm:"column:task_id;primaryKey"`
	BatchID           string     `gorm:"column:batch_id;index;not null"`
	FlagsFingerprint  string     `gorm:"column:flags_fingerprint;not null"`
	MergeEnabled      bool       `gorm:"column:merge_enabled;not null"`
	SplitEnabled      bool       `gorm:"column:split_enabled;not null"`
	CorrectionEnabled bool       `gorm:"column:correction_enabled;not null"`
	ParallelEnabled   bool       `gorm:"column:parallel_enabled;not null"`
	Status            string     `gorm:"column:status;not null;index"`
	CurrentStage      string     `gorm:"column:current_stage"`
	Progress          int        `gorm:"column:progress;not null;default:0"`
	TotalRows         int        `gorm:"column:total_rows;not null;default:0"`
	TotalOrders       int        `gorm:"column:total_orders;not null;default:0"`
	StartTime         *time.Time `gorm:"column:start_time"`
	EndTime           *time.Time `gorm:"column:end_time"`
	ErrorMessage      string     `gorm:"column:error_message"`
	TotalWorkOrders   *int       `gorm:"column:total_work_orders"`
	PackingOrders     *int       `gorm:"column:packing_orders"`
	FeedingOrders     *int       `gorm:"column:feeding_orders"`
	CreatedAt         time.Time  `gorm:"column:created_at;not null"`
}

func (SchedulingTaskModel) TableName() string {
	return "scheduling_tasks"
}

// PackerOrderModel represents the packing_orders table (HJB). Plan ids
// repeat across days (the daily sequence restarts), so uniqueness is on
// (plan_id, plan_date).
type PackerOrderModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PlanID         string    `gorm:"column:plan_id;uniqueIndex:ux_packing_plan;not null"`
	ProductionLine string    `gorm:"column:production_line;index;not null"`
	MaterialCode   string    `gorm:"column:material_code;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	PlanStart      time.Time `gorm:"column:plan_start;not null"`
	PlanEnd        time.Time `gorm:"column:plan_end;not null"`
	Sequence       int       `gorm:"column:sequence;not null"`
	PlanDate       time.Time `gorm:"column:plan_date;not null;uniqueIndex:ux_packing_plan"`
	Shift          string    `gorm:"column:shift"`
	InputPlanID    string    `gorm:"column:input_plan_id;index"`
	InputBatchCode string    `gorm:"column:input_batch_code"`
	TaskID         string    `gorm:"column:task_id;index;not null"`
	Status         string    `gorm:"column:status;not null;default:'PLANNED'"`
}

func (PackerOrderModel) TableName() string {
	return "packing_orders"
}

// FeederOrderModel represents the feeding_orders table (HWS)
type FeederOrderModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	PlanID         string    `gorm:"column:plan_id;uniqueIndex:ux_feeding_plan;not null"`
	MachineCode    string    `gorm:"column:machine_code;index;not null"`
	ProductionLine string    `gorm:"column:production_line;not null"`
	MaterialCode   string    `gorm:"column:material_code;not null"`
	PlanStart      time.Time `gorm:"column:plan_start;not null"`
	PlanEnd        time.Time `gorm:"column:plan_end;not null"`
	Sequence       int       `gorm:"column:sequence;not null"`
	PlanDate       time.Time `gorm:"column:plan_date;not null;uniqueIndex:ux_feeding_plan"`
	Shift          string    `gorm:"column:shift"`
	TaskID         string    `gorm:"column:task_id;index;not null"`
	SafetyStock    int       `gorm:"column:safety_stock;not null;default:0"`
	IsLastOne      bool      `gorm:"column:is_last_one;not null;default:false"`
	Status         string    `gorm:"column:status;not null;default:'PLANNED'"`
}

func (FeederOrderModel) TableName() string {
	return "feeding_orders"
}

// DailySequenceModel represents the daily_sequences table. NextValue is the
// next unallocated sequence number for (kind, date).
type DailySequenceModel struct {
	Kind      string    `gorm:"column:kind;primaryKey"`
	Date      time.Time `gorm:"column:date;primaryKey"`
	NextValue int64     `gorm:"column:next_value;not null;default:1"`
}

func (DailySequenceModel) TableName() string {
	return "daily_sequences"
}

// StageLogModel represents the stage_logs table
type StageLogModel struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID     string    `gorm:"column:task_id;index;not null"`
	Stage      string    `gorm:"column:stage;not null"`
	Step       string    `gorm:"column:step"`
	Level      string    `gorm:"column:level;not null;default:'INFO'"`
	Message    string    `gorm:"column:message;type:text;not null"`
	Data       string    `gorm:"column:data;type:text"` // JSON as text
	DurationMs int64     `gorm:"column:duration_ms;not null;default:0"`
	Timestamp  time.Time `gorm:"column:timestamp;not null"`
}

func (StageLogModel) TableName() string {
	return "stage_logs"
}
