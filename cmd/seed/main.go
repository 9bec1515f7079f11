// Seeds the reference data: classification rows, the PMBOK and Scrum
// catalogs and the department tree. Safe to run repeatedly, existing rows
// are matched by their natural keys.
package main

import (
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/dao/query"
)

func main() {
	db := query.GetDB()
	if err := query.Migrate(db); err != nil {
		klog.Error("migrate failed: ", err)
		panic(err)
	}

	if err := seedStatuses(db); err != nil {
		panic(err)
	}
	if err := seedPhases(db); err != nil {
		panic(err)
	}
	if err := seedProcesses(db); err != nil {
		panic(err)
	}
	if err := seedDepartments(db); err != nil {
		panic(err)
	}
	klog.Info("seed complete")
}

func seedStatuses(db *gorm.DB) error {
	statuses := []model.ProcessStatus{
		{Name: "Base Estratégica", BgColor: "bg-indigo-800", TextColor: "text-white"},
		{Name: "Ritmo de Sprint (2 Semanas)", BgColor: "bg-blue-700", TextColor: "text-white"},
		{Name: "Ritmo Diario", BgColor: "bg-green-600", TextColor: "text-white"},
		{Name: "Burocracia Innecesaria", BgColor: "bg-amber-500", TextColor: "text-white"},
		{Name: "Inaplicable", BgColor: "bg-gray-400", TextColor: "text-gray-800"},
	}
	for i := range statuses {
		err := db.Where(model.ProcessStatus{Name: statuses[i].Name}).
			FirstOrCreate(&statuses[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedPhases(db *gorm.DB) error {
	phases := []model.ProcessPhase{
		{Taxonomy: model.TaxonomyPMBOK, Name: "Integración (Inicio)"},
		{Taxonomy: model.TaxonomyPMBOK, Name: "Alcance (Planeación)"},
		{Taxonomy: model.TaxonomyPMBOK, Name: "Ejecución"},
		{Taxonomy: model.TaxonomyPMBOK, Name: "Monitoreo y Control"},
		{Taxonomy: model.TaxonomyPMBOK, Name: "Cierre"},
		{Taxonomy: model.TaxonomyScrum, Name: "Inicio", BgColor: "bg-sky-100", TextColor: "text-sky-800"},
		{Taxonomy: model.TaxonomyScrum, Name: "Planificación y Estimación", BgColor: "bg-sky-100", TextColor: "text-sky-800"},
		{Taxonomy: model.TaxonomyScrum, Name: "Implementación", BgColor: "bg-sky-100", TextColor: "text-sky-800"},
		{Taxonomy: model.TaxonomyScrum, Name: "Revisión y Retrospectiva", BgColor: "bg-sky-100", TextColor: "text-sky-800"},
		{Taxonomy: model.TaxonomyScrum, Name: "Lanzamiento", BgColor: "bg-sky-100", TextColor: "text-sky-800"},
	}
	for i := range phases {
		err := db.Where(model.ProcessPhase{Taxonomy: phases[i].Taxonomy, Name: phases[i].Name}).
			FirstOrCreate(&phases[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

type seedProcess struct {
	number int
	name   string
	status string
	phase  string
}

func seedProcesses(db *gorm.DB) error {
	pmbok := []seedProcess{
		{1, "Desarrollar el Acta de Constitución del Proyecto", "Base Estratégica", "Integración (Inicio)"},
		{2, "Identificar a los Interesados", "Base Estratégica", "Integración (Inicio)"},
		{3, "Desarrollar el Plan para la Dirección del Proyecto", "Burocracia Innecesaria", "Alcance (Planeación)"},
		{5, "Planificar la Gestión del Alcance", "Base Estratégica", "Alcance (Planeación)"},
		{6, "Recopilar Requisitos", "Base Estratégica", "Alcance (Planeación)"},
		{7, "Definir el Alcance", "Base Estratégica", "Alcance (Planeación)"},
		{8, "Crear la EDT/WBS", "Base Estratégica", "Alcance (Planeación)"},
		{27, "Dirigir y Gestionar el Trabajo del Proyecto", "Ritmo Diario", "Ejecución"},
		{28, "Gestionar el Conocimiento del Proyecto", "Ritmo de Sprint (2 Semanas)", "Ejecución"},
		{37, "Monitorear y Controlar el Trabajo del Proyecto", "Ritmo de Sprint (2 Semanas)", "Monitoreo y Control"},
		{38, "Realizar el Control Integrado de Cambios", "Ritmo de Sprint (2 Semanas)", "Monitoreo y Control"},
		{47, "Cerrar el Proyecto o Fase", "Inaplicable", "Cierre"},
	}
	scrum := []seedProcess{
		{1, "Crear la Visión del Proyecto", "Base Estratégica", "Inicio"},
		{2, "Identificar al Scrum Master y a los Interesados", "Base Estratégica", "Inicio"},
		{3, "Formar el Equipo Scrum", "Base Estratégica", "Inicio"},
		{9, "Crear Historias de Usuario", "Ritmo de Sprint (2 Semanas)", "Planificación y Estimación"},
		{12, "Crear Entregables", "Ritmo Diario", "Implementación"},
		{13, "Realizar la Reunión Diaria", "Ritmo Diario", "Implementación"},
		{16, "Demostrar y Validar el Sprint", "Ritmo de Sprint (2 Semanas)", "Revisión y Retrospectiva"},
		{19, "Enviar Entregables", "Ritmo de Sprint (2 Semanas)", "Lanzamiento"},
	}

	if err := seedCatalog(db, model.TaxonomyPMBOK, pmbok); err != nil {
		return err
	}
	return seedCatalog(db, model.TaxonomyScrum, scrum)
}

func seedCatalog(db *gorm.DB, taxonomy model.Taxonomy, entries []seedProcess) error {
	for _, entry := range entries {
		var status model.ProcessStatus
		if err := db.Where("name = ?", entry.status).First(&status).Error; err != nil {
			return err
		}
		var phase model.ProcessPhase
		if err := db.Where("taxonomy = ? AND name = ?", taxonomy, entry.phase).First(&phase).Error; err != nil {
			return err
		}
		process := model.Process{
			Taxonomy:     taxonomy,
			Number:       entry.number,
			Name:         entry.name,
			StatusID:     &status.ID,
			PhaseID:      &phase.ID,
			KanbanStatus: model.KanbanUnassigned,
		}
		err := db.Where(model.Process{Taxonomy: taxonomy, Number: entry.number}).
			Assign(process).FirstOrCreate(&process).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedDepartments(db *gorm.DB) error {
	tree := map[string][]string{
		"Dirección General": {},
		"Tecnología":        {"Desarrollo", "Infraestructura", "Datos"},
		"Operaciones":       {"Logística", "Calidad"},
		"Finanzas":          {"Contabilidad", "Tesorería"},
		"Gestión Humana":    {},
		"Comercial":         {"Ventas", "Mercadeo"},
	}
	for parent, children := range tree {
		parentDept := model.Department{Name: parent}
		if err := db.Where(model.Department{Name: parent}).FirstOrCreate(&parentDept).Error; err != nil {
			return err
		}
		for _, child := range children {
			childDept := model.Department{Name: child, ParentID: &parentDept.ID}
			if err := db.Where(model.Department{Name: child}).FirstOrCreate(&childDept).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
