// Package models declares the api app's tables as they should look after
// every migration has been applied.
package models

type Service struct {
	ID          int     `db:"id,type:serial,primary"`
	Name        string  `db:"name,type:varchar,max_length:255,not_null"`
	Description *string `db:"description,type:text"`
	Price       float64 `db:"price,type:numeric,not_null,default:0"`
	IsActive    bool    `db:"is_active,type:boolean,not_null,default:true"`
}

func (Service) TableName() string { return "api_service" }

type Schedule struct {
	ID        int    `db:"id,type:serial,primary"`
	ServiceID int    `db:"service_id,type:integer,not_null,fk:api_service.id,on_delete:CASCADE"`
	Weekday   int    `db:"weekday,type:integer,not_null"`
	StartTime string `db:"start_time,type:time,not_null,default:00:00:00"`
	EndTime   string `db:"end_time,type:time,not_null,default:00:00:00"`
}

func (Schedule) TableName() string { return "api_schedule" }

// All lists the models checked against the migration history.
func All() []interface{} {
	return []interface{}{Service{}, Schedule{}}
}
