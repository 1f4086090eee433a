package linelist

// Columns is the line list header in published order. Resolved output keeps
// the same columns in the same order.
var Columns = []string{
	"FECHA_ACTUALIZACION",
	"ID_REGISTRO",
	"ORIGEN",
	"SECTOR",
	"ENTIDAD_UM",
	"SEXO",
	"ENTIDAD_NAC",
	"ENTIDAD_RES",
	"MUNICIPIO_RES",
	"TIPO_PACIENTE",
	"FECHA_INGRESO",
	"FECHA_SINTOMAS",
	"FECHA_DEF",
	"INTUBADO",
	"NEUMONIA",
	"EDAD",
	"NACIONALIDAD",
	"EMBARAZO",
	"HABLA_LENGUA_INDIG",
	"INDIGENA",
	"DIABETES",
	"EPOC",
	"ASMA",
	"INMUSUPR",
	"HIPERTENSION",
	"OTRA_COM",
	"CARDIOVASCULAR",
	"OBESIDAD",
	"RENAL_CRONICA",
	"TABAQUISMO",
	"OTRO_CASO",
	"TOMA_MUESTRA_LAB",
	"RESULTADO_LAB",
	"CLASIFICACION_FINAL",
	"MIGRANTE",
	"PAIS_NACIONALIDAD",
	"PAIS_ORIGEN",
	"UCI",
}

// yesNoFields all resolve against the SI_NO catalog.
var yesNoFields = []string{
	"INTUBADO",
	"NEUMONIA",
	"EMBARAZO",
	"HABLA_LENGUA_INDIG",
	"INDIGENA",
	"DIABETES",
	"EPOC",
	"ASMA",
	"INMUSUPR",
	"HIPERTENSION",
	"OTRA_COM",
	"CARDIOVASCULAR",
	"OBESIDAD",
	"RENAL_CRONICA",
	"TABAQUISMO",
	"OTRO_CASO",
	"TOMA_MUESTRA_LAB",
	"MIGRANTE",
	"UCI",
}
